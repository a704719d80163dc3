package pipeline

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/couchcryptid/wems/internal/alert"
	"github.com/couchcryptid/wems/internal/domain"
	"github.com/couchcryptid/wems/internal/render"
	"github.com/couchcryptid/wems/internal/tier"
)

// configureAlerts merges the caller's partial rule into the shared store.
func (p *Pipeline) configureAlerts(_ context.Context, c *call) string {
	if msg, blocked := p.gate(c,
		c.guard.Feature(tier.CustomAlerts, true, "Custom alert configuration requires WEMS Premium"),
	); blocked {
		return msg
	}

	alertType := c.args.String("alert_type", "")
	merged, err := p.rules.Update(domain.Category(alertType), c.args.Map("config"))
	if errors.Is(err, alert.ErrUnknownCategory) {
		c.outcome = outcomeInvalid
		return render.UnknownAlertType(alertType)
	}
	if err == nil {
		var body []byte
		if body, err = json.Marshal(merged); err == nil {
			p.logger.Info("alert rule updated", "category", alertType)
			return render.AlertConfigUpdated(alertType, body)
		}
	}
	c.outcome = outcomeUnexpected
	p.logger.Error("alert rule update failed", "category", alertType, "error", err)
	return render.Unexpected("alert configuration", err)
}
