package alert

import "testing"

func TestPriorityLevelOrdering(t *testing.T) {
	ordered := []Priority{PriorityInfo, PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].Level() >= ordered[i].Level() {
			t.Errorf("Level(%s) = %d not below Level(%s) = %d",
				ordered[i-1], ordered[i-1].Level(), ordered[i], ordered[i].Level())
		}
	}

	if Priority("urgent").Level() != -1 {
		t.Errorf("unknown priority level = %d, want -1", Priority("urgent").Level())
	}
	if Priority("urgent").IsValid() {
		t.Error("unknown priority reported valid")
	}
}

func TestFilterConfigAccepts(t *testing.T) {
	a := &Alert{Type: TypeSecurityScan, Priority: PriorityMedium}

	tests := []struct {
		name   string
		fc     *FilterConfig
		accept bool
	}{
		{"nil filter accepts all", nil, true},
		{"empty filter accepts all", &FilterConfig{}, true},
		{"floor below", &FilterConfig{MinPriority: PriorityLow}, true},
		{"floor equal", &FilterConfig{MinPriority: PriorityMedium}, true},
		{"floor above", &FilterConfig{MinPriority: PriorityHigh}, false},
		{"type listed", &FilterConfig{Types: []Type{TypeSecurityScan, TypeSystemHealth}}, true},
		{"type not listed", &FilterConfig{Types: []Type{TypeSystemHealth}}, false},
		{"both pass", &FilterConfig{MinPriority: PriorityLow, Types: []Type{TypeSecurityScan}}, true},
		{"priority passes type fails", &FilterConfig{MinPriority: PriorityLow, Types: []Type{TypeCPUUsage}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fc.Accepts(a); got != tt.accept {
				t.Errorf("Accepts() = %v, want %v", got, tt.accept)
			}
		})
	}
}

func TestAlertTargetsChannel(t *testing.T) {
	a := &Alert{Channels: []Channel{ChannelLog, ChannelSlack}}
	if !a.TargetsChannel(ChannelSlack) {
		t.Error("TargetsChannel(slack) = false, want true")
	}
	if a.TargetsChannel(ChannelEmail) {
		t.Error("TargetsChannel(email) = true, want false")
	}
}

func TestFilterMatches(t *testing.T) {
	acked := &Alert{
		Type: TypeSecurityScan, Priority: PriorityHigh,
		Channels: []Channel{ChannelSlack}, Acknowledged: true,
	}
	fresh := &Alert{
		Type: TypeSystemHealth, Priority: PriorityLow,
		Channels: []Channel{ChannelLog},
	}

	yes := true
	no := false

	tests := []struct {
		name   string
		filter Filter
		alert  *Alert
		match  bool
	}{
		{"empty matches", Filter{}, fresh, true},
		{"type match", Filter{Type: TypeSecurityScan}, acked, true},
		{"type mismatch", Filter{Type: TypeSecurityScan}, fresh, false},
		{"priority exact not ordered", Filter{Priority: PriorityHigh}, fresh, false},
		{"channel membership", Filter{Channel: ChannelSlack}, acked, true},
		{"channel not targeted", Filter{Channel: ChannelSlack}, fresh, false},
		{"acked only", Filter{Acknowledged: &yes}, acked, true},
		{"unacked only", Filter{Acknowledged: &no}, acked, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(tt.alert); got != tt.match {
				t.Errorf("Matches() = %v, want %v", got, tt.match)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	enabled := map[Channel]bool{
		ChannelDashboard: true,
		ChannelDevPortal: true,
		ChannelLog:       true,
		ChannelSlack:     false,
		ChannelEmail:     false,
		ChannelSMS:       false,
		ChannelWebhook:   false,
	}
	for ch, want := range enabled {
		cc, ok := cfg.Channels[ch]
		if !ok {
			t.Errorf("DefaultConfig() missing channel %s", ch)
			continue
		}
		if cc.Enabled != want {
			t.Errorf("DefaultConfig() %s enabled = %v, want %v", ch, cc.Enabled, want)
		}
	}

	if cfg.RetentionDays != 30 {
		t.Errorf("RetentionDays = %d, want 30", cfg.RetentionDays)
	}
	if cfg.MaxAlertsPerChannel != 100 {
		t.Errorf("MaxAlertsPerChannel = %d, want 100", cfg.MaxAlertsPerChannel)
	}
}

func TestConfigClone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GlobalFilters = &FilterConfig{MinPriority: PriorityLow}

	clone := cfg.Clone()
	clone.Channels[ChannelSlack] = ChannelConfig{Enabled: true}
	clone.GlobalFilters.MinPriority = PriorityCritical

	if cfg.Channels[ChannelSlack].Enabled {
		t.Error("Clone() shares channel map with original")
	}
	if cfg.GlobalFilters.MinPriority != PriorityLow {
		t.Error("Clone() shares global filters with original")
	}
}
