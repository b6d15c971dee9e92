package sqlinline

import (
	"regexp"
	"strings"
	"testing"
)

var markerPattern = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestAllQueriesCarryAuditMarkers(t *testing.T) {
	queries := map[string]string{
		"QInsertCampaign":        QInsertCampaign,
		"QGetCampaign":           QGetCampaign,
		"QUpdateCampaign":        QUpdateCampaign,
		"QListActiveCampaigns":   QListActiveCampaigns,
		"QInsertDonation":        QInsertDonation,
		"QListDonations":         QListDonations,
		"QMarkDonationsRefunded": QMarkDonationsRefunded,
		"QAppendUserCampaign":    QAppendUserCampaign,
		"QAppendUserDonation":    QAppendUserDonation,
		"QUserCampaigns":         QUserCampaigns,
		"QUserDonations":         QUserDonations,
	}
	for _, stmt := range Schema() {
		queries["schema:"+firstWords(stmt)] = stmt
	}

	seen := make(map[string]string)
	for name, q := range queries {
		first := strings.TrimSpace(strings.SplitN(strings.TrimSpace(q), "\n", 2)[0])
		if !markerPattern.MatchString(first) {
			t.Errorf("%s: missing or invalid marker %q", name, first)
			continue
		}
		if prev, ok := seen[first]; ok {
			t.Errorf("%s: marker reused from %s", name, prev)
		}
		seen[first] = name
	}
}

func firstWords(stmt string) string {
	lines := strings.SplitN(strings.TrimSpace(stmt), "\n", 3)
	if len(lines) > 1 {
		return strings.TrimSpace(lines[1])
	}
	return stmt
}
