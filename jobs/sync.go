package jobs

import (
	"fmt"
	"os"
	"strconv"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"splitbook/services"
)

// StartSyncScheduler runs a background sync of every active source at a
// fixed interval (SYNC_INTERVAL_SECONDS, default 60). Failures are
// logged per source and never stop the schedule.
func StartSyncScheduler(ledger *services.Ledger) *cron.Cron {
	interval := 60
	if raw := os.Getenv("SYNC_INTERVAL_SECONDS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			interval = n
		} else {
			log.Warnf("invalid SYNC_INTERVAL_SECONDS %q, using %ds", raw, interval)
		}
	}

	c := cron.New(cron.WithSeconds())
	spec := fmt.Sprintf("@every %ds", interval)
	_, err := c.AddFunc(spec, func() {
		results := ledger.SyncAll()
		added := 0
		for _, r := range results {
			added += r.Added
		}
		if added > 0 {
			log.Infof("background sync ingested %d transactions across %d sources", added, len(results))
		}
	})
	if err != nil {
		log.Errorf("failed to schedule background sync: %v", err)
		return c
	}

	c.Start()
	log.Infof("background sync scheduled every %ds", interval)
	return c
}
