package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/scallop-io/sui-package-kit/internal/deploy"
	"github.com/scallop-io/sui-package-kit/internal/messages"
)

var (
	successColor = color.New(color.FgGreen)
	labelColor   = color.New(color.FgHiBlack)
	idColor      = color.New(color.FgBlue, color.Bold)
	warnColor    = color.New(color.FgYellow)

	diffColorAdded   = color.New(color.FgGreen)
	diffColorRemoved = color.New(color.FgRed)
	diffColorHunk    = color.New(color.FgCyan)
)

func reportPublish(out io.Writer, dir string, network string, outcome *deploy.PublishOutcome) {
	if outcome == nil {
		return
	}
	if outcome.AlreadyPublished {
		_, _ = warnColor.Fprintf(out, messages.AlreadyPublishedFmt, network, dir)
		return
	}
	result := outcome.Result
	if !result.Succeeded() {
		return
	}
	_, _ = successColor.Fprintln(out, messages.PublishSuccess)
	_, _ = fmt.Fprintln(out, messages.CreatedObjectsHeader)
	if len(result.Created) == 0 {
		_, _ = fmt.Fprintln(out, messages.ReportNoCreated)
	}
	for _, obj := range result.Created {
		_, _ = fmt.Fprintf(out, messages.ReportObjectFmt, labelColor.Sprint(obj.Type), idColor.Sprint(obj.ObjectID), obj.Owner)
	}
	_, _ = fmt.Fprintln(out, messages.PackageInfoHeader)
	_, _ = fmt.Fprintf(out, messages.ReportPackageIDFmt, idColor.Sprint(result.PackageID))
	_, _ = fmt.Fprintf(out, messages.ReportUpgradeCapFmt, idColor.Sprint(result.UpgradeCapID))
	for _, id := range result.PublisherIDs {
		_, _ = fmt.Fprintf(out, messages.ReportPublisherFmt, idColor.Sprint(id))
	}
	if result.Digest != "" {
		_, _ = fmt.Fprintf(out, messages.ReportDigestFmt, labelColor.Sprint(result.Digest))
	}
	if outcome.VariantPath != "" {
		_, _ = fmt.Fprintf(out, messages.ManifestVariantFmt, outcome.VariantPath)
	}
}

func reportUpgrade(out io.Writer, dir string, result deploy.UpgradeResult) {
	if !result.Succeeded() {
		return
	}
	_, _ = successColor.Fprintf(out, messages.UpgradeSuccessFmt, dir)
	_, _ = fmt.Fprintf(out, messages.ReportPackageIDFmt, idColor.Sprint(result.PackageID))
	_, _ = fmt.Fprintf(out, messages.ReportUpgradeCapFmt, idColor.Sprint(result.UpgradeCapID))
	if result.Digest != "" {
		_, _ = fmt.Fprintf(out, messages.ReportDigestFmt, labelColor.Sprint(result.Digest))
	}
}

// reportBatch prints one line per entry: its package id, a skip marker, or that it never ran.
func reportBatch(out io.Writer, entries []deploy.BatchEntry, results []deploy.BatchResult, batchErr error) {
	_, _ = fmt.Fprintln(out, messages.BatchSummaryHeader)
	for i, entry := range entries {
		status := labelColor.Sprint(messages.ReportBatchNotRun)
		if i < len(results) && results[i].Outcome != nil {
			outcome := results[i].Outcome
			switch {
			case outcome.AlreadyPublished:
				status = warnColor.Sprint(messages.ReportBatchSkipped)
			case outcome.Result.Succeeded():
				status = idColor.Sprint(outcome.Result.PackageID)
			default:
				status = diffColorRemoved.Sprint(messages.ReportBatchFailed)
			}
		}
		_, _ = fmt.Fprintf(out, messages.ReportBatchLineFmt, i+1, entry.Path, status)
	}
	if batchErr != nil {
		_, _ = warnColor.Fprintln(out, fmt.Sprintf(messages.ReportBatchStoppedFmt, len(results), len(entries)))
	}
}

// renderDiff colors unified diff lines the way git does.
func renderDiff(out io.Writer, diff string) {
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			_, _ = fmt.Fprintln(out, line)
		case strings.HasPrefix(line, "+"):
			_, _ = diffColorAdded.Fprintln(out, line)
		case strings.HasPrefix(line, "-"):
			_, _ = diffColorRemoved.Fprintln(out, line)
		case strings.HasPrefix(line, "@@"):
			_, _ = diffColorHunk.Fprintln(out, line)
		default:
			_, _ = fmt.Fprintln(out, line)
		}
	}
}
