package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/meridaworks/talentd/internal/domain"
)

// ReadRoster parses a roster feed into roster entries. Rows without an
// employee id or a display name are dropped with a log line; a feed whose
// header lacks either column is malformed.
func ReadRoster(r io.Reader) ([]domain.RosterEntry, error) {
	header, rows, err := readAll(r)
	if err != nil {
		return nil, err
	}

	s := newSchema(header)
	idCol := s.col("employee_id", "matricula", "emp_id", "id")
	nameCol := s.col("name", "full_name", "employee_name", "nombre")
	emailCol := s.col("email", "mail", "correo")
	roleCol := s.col("role", "position", "job_title", "puesto")
	countryCol := s.col("country", "pais", "location")
	leaderCol := s.col("leader", "leader_name", "manager", "lider")
	leaderMailCol := s.col("leader_email", "manager_email", "lider_email")

	if !s.has(idCol, nameCol) {
		return nil, fmt.Errorf("%w: roster feed missing employee id or name column", domain.ErrMalformedFeed)
	}

	entries := make([]domain.RosterEntry, 0, len(rows))
	for i, row := range rows {
		entry := domain.RosterEntry{
			Identity: domain.Identity{
				EmployeeID: cell(row, idCol),
				Name:       cell(row, nameCol),
				Email:      cell(row, emailCol),
				Role:       cell(row, roleCol),
				Country:    cell(row, countryCol),
			},
		}
		if err := domain.ValidateIdentity(&entry.Identity); err != nil {
			log.Printf("ingest: roster row %d dropped: %v", i+2, err)
			continue
		}
		if name := cell(row, leaderCol); name != "" {
			entry.Leader = &domain.Leader{
				Name:  name,
				Email: cell(row, leaderMailCol),
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ReadCredentials parses a credential feed, keeping only verified and
// non-expired rows.
func ReadCredentials(r io.Reader) ([]domain.Credential, error) {
	header, rows, err := readAll(r)
	if err != nil {
		return nil, err
	}

	s := newSchema(header)
	idCol := s.col("employee_id", "matricula", "emp_id")
	nameCol := s.col("credential", "certification", "cert_name", "name")
	issuerCol := s.col("issuer", "vendor", "provider")
	issuedCol := s.col("issued_at", "issue_date", "obtained")
	expiresCol := s.col("expires_at", "expiry_date", "expiration")
	verifiedCol := s.col("verified", "status", "validated")

	if !s.has(idCol, nameCol) {
		return nil, fmt.Errorf("%w: credential feed missing employee id or credential column", domain.ErrMalformedFeed)
	}

	now := time.Now()
	creds := make([]domain.Credential, 0, len(rows))
	for _, row := range rows {
		cred := domain.Credential{
			EmployeeID: cell(row, idCol),
			Name:       cell(row, nameCol),
			Issuer:     cell(row, issuerCol),
			IssuedAt:   cell(row, issuedCol),
			ExpiresAt:  cell(row, expiresCol),
		}
		if cred.EmployeeID == "" || cred.Name == "" {
			continue
		}
		if verifiedCol >= 0 && !isAffirmative(cell(row, verifiedCol)) {
			continue
		}
		if expired(cred.ExpiresAt, now) {
			continue
		}
		creds = append(creds, cred)
	}
	return creds, nil
}

// ReadSkills parses a skill feed. Rows marked inactive are dropped.
func ReadSkills(r io.Reader) ([]domain.Skill, error) {
	header, rows, err := readAll(r)
	if err != nil {
		return nil, err
	}

	s := newSchema(header)
	idCol := s.col("employee_id", "matricula", "emp_id")
	nameCol := s.col("skill", "skill_name", "name")
	categoryCol := s.col("category", "skill_category", "family")
	levelCol := s.col("proficiency", "level", "rating")
	activeCol := s.col("active", "status")

	if !s.has(idCol, nameCol) {
		return nil, fmt.Errorf("%w: skill feed missing employee id or skill column", domain.ErrMalformedFeed)
	}

	skills := make([]domain.Skill, 0, len(rows))
	for _, row := range rows {
		skill := domain.Skill{
			EmployeeID: cell(row, idCol),
			Name:       cell(row, nameCol),
			Category:   cell(row, categoryCol),
		}
		if skill.EmployeeID == "" || skill.Name == "" {
			continue
		}
		if activeCol >= 0 && !isAffirmative(cell(row, activeCol)) {
			continue
		}
		if level := cell(row, levelCol); level != "" {
			if n, err := strconv.Atoi(level); err == nil && n >= 1 && n <= 5 {
				skill.Proficiency = n
			}
		}
		skills = append(skills, skill)
	}
	return skills, nil
}

// ReadOverrides parses a manual linkage feed of filename to employee id
// pairs.
func ReadOverrides(r io.Reader) (map[string]string, error) {
	header, rows, err := readAll(r)
	if err != nil {
		return nil, err
	}

	s := newSchema(header)
	fileCol := s.col("filename", "file", "document")
	idCol := s.col("employee_id", "matricula", "emp_id")
	if !s.has(fileCol, idCol) {
		return nil, fmt.Errorf("%w: override feed missing filename or employee id column", domain.ErrMalformedFeed)
	}

	overrides := make(map[string]string, len(rows))
	for _, row := range rows {
		filename := cell(row, fileCol)
		employeeID := cell(row, idCol)
		if filename == "" || employeeID == "" {
			continue
		}
		overrides[filename] = employeeID
	}
	return overrides, nil
}

func readAll(r io.Reader) (header []string, rows [][]string, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrMalformedFeed, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: empty feed", domain.ErrMalformedFeed)
	}
	return records[0], records[1:], nil
}

func isAffirmative(value string) bool {
	switch strings.ToLower(value) {
	case "yes", "y", "true", "1", "verified", "active", "valid":
		return true
	}
	return false
}

// expired treats a blank or unparseable expiry as non-expiring; the
// upstream systems leave the field empty for lifetime credentials.
func expired(expiresAt string, now time.Time) bool {
	if expiresAt == "" {
		return false
	}
	for _, layout := range []string{"2006-01-02", "02/01/2006", time.RFC3339} {
		if t, err := time.Parse(layout, expiresAt); err == nil {
			return t.Before(now)
		}
	}
	return false
}
