package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName_Lowercase(t *testing.T) {
	assert.Equal(t, "maria garcia", NormalizeName("MARIA GARCIA"))
}

func TestNormalizeName_StripsDiacritics(t *testing.T) {
	assert.Equal(t, "jose maria nunez", NormalizeName("José María Núñez"))
	assert.Equal(t, "francois muller", NormalizeName("François Müller"))
}

func TestNormalizeName_DropsPunctuationAndDigits(t *testing.T) {
	assert.Equal(t, "garcia lopez sr dev", NormalizeName("GARCIA-LOPEZ, SR. DEV (2024)"))
}

func TestNormalizeName_CollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "ana paula silva", NormalizeName("  Ana\t Paula   Silva  "))
}

func TestNormalizeName_Empty(t *testing.T) {
	assert.Equal(t, "", NormalizeName(""))
	assert.Equal(t, "", NormalizeName("12345 --- !!!"))
}

func TestNormalizeName_Idempotent(t *testing.T) {
	inputs := []string{
		"José María Núñez",
		"MARIA GARCIA LOPEZ - SR DEV",
		"  Ana   Paula  ",
		"o'brien, seán",
	}
	for _, input := range inputs {
		once := NormalizeName(input)
		assert.Equal(t, once, NormalizeName(once), "input %q", input)
	}
}
