package core

import "github.com/JonMunkholm/contactfinder/internal/hunter"

// Missing is written for any field the API did not return.
const Missing = "N/A"

// Header is the fixed CSV header row.
var Header = []string{"First Name", "Last Name", "Email", "Job Title", "Company"}

// Project maps API emails to records, preserving order. Every record carries
// the caller's company name. No deduplication or sorting is applied.
func Project(emails []hunter.Email, company string) []Record {
	records := make([]Record, len(emails))
	for i, e := range emails {
		records[i] = Record{
			FirstName: orMissing(e.FirstName),
			LastName:  orMissing(e.LastName),
			Email:     orMissing(e.Value),
			JobTitle:  orMissing(e.Position),
			Company:   company,
		}
	}
	return records
}

// Rows converts records to CSV rows.
func Rows(records []Record) [][]string {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = r.Row()
	}
	return rows
}

func orMissing(s *string) string {
	if s == nil {
		return Missing
	}
	return *s
}
