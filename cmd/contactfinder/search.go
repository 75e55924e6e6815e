package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/contactfinder/internal/core"
	"github.com/JonMunkholm/contactfinder/internal/report"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search one domain and print the contacts",
		Long: `Search one domain, print the contacts and save them as CSV under the
output directory, exactly as the web form does.`,
		Example: `  contactfinder search --domain acme.com --company "Acme Co"
  contactfinder search --domain acme.com --company Acme --format markdown --no-save`,
		Args: cobra.NoArgs,
		RunE: runSearch,
	}

	cmd.Flags().StringP("domain", "d", "", "Company domain, e.g. acme.com")
	cmd.Flags().StringP("company", "c", "", "Company name written into every row")
	cmd.Flags().StringP("format", "f", report.FormatTable, "Output format: "+strings.Join(report.Formats, ", "))
	cmd.Flags().Bool("no-save", false, "Print only, do not write the CSV")
	_ = cmd.MarkFlagRequired("domain")
	_ = cmd.MarkFlagRequired("company")

	return cmd
}

func runSearch(cmd *cobra.Command, _ []string) error {
	domain, _ := cmd.Flags().GetString("domain")
	company, _ := cmd.Flags().GetString("company")
	format, _ := cmd.Flags().GetString("format")
	noSave, _ := cmd.Flags().GetBool("no-save")

	w, err := report.New(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	req := core.SearchRequest{Domain: domain, Company: company}
	var rep report.Report
	if noSave {
		records, err := a.service.Find(cmd.Context(), req)
		if err != nil {
			return userError(err)
		}
		req = req.Normalize()
		rep = report.Report{Domain: req.Domain, Company: req.Company, Records: records}
	} else {
		res, err := a.service.Search(cmd.Context(), req)
		if err != nil {
			return userError(err)
		}
		rep = report.Report{
			Domain:  res.Request.Domain,
			Company: res.Request.Company,
			Records: res.Records,
			Path:    res.Artifact.Path,
		}
	}

	return w.Write(rep)
}

// userError keeps the technical error in the chain but shows the mapped message.
func userError(err error) error {
	if !core.IsUserFacing(err) {
		return err
	}
	return &cliError{msg: core.FormatUserError(err), err: err}
}

type cliError struct {
	msg string
	err error
}

func (e *cliError) Error() string { return e.msg }
func (e *cliError) Unwrap() error { return e.err }
