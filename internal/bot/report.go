package bot

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (d *Dispatcher) report(_ context.Context, req Request, args []string) (Reply, error) {
	if d.cfg.ReportsFile == "" {
		return d.reply("Automatic issue reporting is not enabled"), nil
	}
	header := fmt.Sprintf("Reported by %s in %d (%s)", req.Author, req.Guild, req.Channel)
	id, err := d.appendReport(header, strings.Join(args, " "))
	if err != nil {
		return Reply{}, err
	}
	return d.reply(fmt.Sprintf("Report %s recorded, thank you.", id)), nil
}

// autoReport records a failed command so it can be looked at later.
func (d *Dispatcher) autoReport(req Request, cause error) {
	d.logger.Error("command failed", zap.String("content", req.Content), zap.Error(cause))
	if d.cfg.ReportsFile == "" {
		return
	}
	if _, err := d.appendReport("[Automatic reporting]", req.Content+": "+cause.Error()); err != nil {
		d.logger.Warn("failed to record report", zap.Error(err))
	}
}

// appendReport writes one tab separated line to the reports file and
// returns its id.
func (d *Dispatcher) appendReport(header, text string) (string, error) {
	id := uuid.NewString()
	line := fmt.Sprintf("%s\t%s\t%s: %s\n", id, time.Now().UTC().Format(time.RFC3339),
		header, strings.ReplaceAll(text, "\n", " "))

	d.reportMu.Lock()
	defer d.reportMu.Unlock()
	f, err := os.OpenFile(d.cfg.ReportsFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open reports file: %w", err)
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close reports file: %w", err)
	}
	d.logger.Info("report recorded", zap.String("id", id))
	return id, nil
}
