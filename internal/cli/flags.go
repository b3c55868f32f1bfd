package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const flagEnvPrefix = "TALENTA_FLAG_"

// BindFlagEnv fills command flags from TALENTA_FLAG_* environment
// variables. A flag set on the command line keeps its value; only
// untouched flags pick up the environment. --port becomes
// TALENTA_FLAG_PORT, --no-migrate becomes TALENTA_FLAG_NO_MIGRATE.
func BindFlagEnv(cmd *cobra.Command) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || f.Changed {
			return
		}
		key := flagEnvPrefix + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		value, ok := os.LookupEnv(key)
		if !ok {
			return
		}
		bindErr = cmd.Flags().Set(f.Name, value)
	})
	return bindErr
}
