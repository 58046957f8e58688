package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gridline/faultdesk/internal/config"
	"github.com/gridline/faultdesk/internal/services/outages"
	"github.com/gridline/faultdesk/internal/util"
)

// writeReport prints r as plain tables for the -report flag.
func writeReport(w io.Writer, cfg *config.Config, r *outages.Report) error {
	loc := cfg.Utility.Location()
	s := r.Summary

	header := fmt.Sprintf("%s reliability report\nScope: %s\nWindow: %s to %s\n\n",
		cfg.Utility.Name,
		r.Scope,
		r.From.In(loc).Format(cfg.Display.DateFormat),
		r.To.In(loc).Format(cfg.Display.DateFormat),
	)

	totals := newTable().
		Headers("Faults", "Open", "Customers", "SAIDI", "SAIFI", "CAIDI", "MTTR").
		Row(
			strconv.Itoa(s.Count),
			strconv.Itoa(s.Open),
			strconv.Itoa(s.CustomersServed),
			fmt.Sprintf("%.3f", s.Indices.SAIDI),
			fmt.Sprintf("%.4f", s.Indices.SAIFI),
			fmt.Sprintf("%.2f", s.Indices.CAIDI),
			util.FormatHours(s.MTTR),
		)

	districts := newTable().Headers("District", "Region", "Faults", "SAIDI", "SAIFI", "CAIDI")
	for _, d := range r.ByDistrict {
		districts.Row(
			d.District.Name,
			d.RegionName,
			strconv.Itoa(d.Summary.Count),
			fmt.Sprintf("%.3f", d.Summary.Indices.SAIDI),
			fmt.Sprintf("%.4f", d.Summary.Indices.SAIFI),
			fmt.Sprintf("%.2f", d.Summary.Indices.CAIDI),
		)
	}

	types := newTable().Headers("Type", "Faults", "Affected", "Cust. hours")
	for _, t := range r.ByType {
		types.Row(
			string(t.Type),
			strconv.Itoa(t.Summary.Count),
			strconv.Itoa(t.Summary.TotalAffected),
			fmt.Sprintf("%.1f", t.Summary.CustomerLostHours),
		)
	}

	out := header + totals.String() + "\n\n"
	if len(r.ByDistrict) > 0 {
		out += districts.String() + "\n\n"
	}
	if len(r.ByType) > 0 {
		out += types.String() + "\n\n"
	}
	if s.Skipped > 0 {
		out += fmt.Sprintf("%d records skipped: timestamps could not be used\n", s.Skipped)
	}

	_, err := io.WriteString(w, out)
	return err
}

func newTable() *table.Table {
	return table.New().Border(lipgloss.NormalBorder())
}
