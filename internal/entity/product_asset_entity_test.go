package entity

import (
	"testing"
)

func TestAssetStatusTransitions(t *testing.T) {
	tests := []struct {
		name string
		from AssetStatus
		to   AssetStatus
		want bool
	}{
		{"pending to preparing", AssetStatusPending, AssetStatusPreparing, true},
		{"pending to ready skips work", AssetStatusPending, AssetStatusReady, false},
		{"pending to live skips work", AssetStatusPending, AssetStatusLive, false},
		{"preparing to ready", AssetStatusPreparing, AssetStatusReady, true},
		{"preparing to failed", AssetStatusPreparing, AssetStatusFailed, true},
		{"preparing to pending not allowed", AssetStatusPreparing, AssetStatusPending, false},
		{"preparing to live must pass ready", AssetStatusPreparing, AssetStatusLive, false},
		{"ready to live", AssetStatusReady, AssetStatusLive, true},
		{"ready to preparing re-prepare", AssetStatusReady, AssetStatusPreparing, true},
		{"ready to failed not allowed", AssetStatusReady, AssetStatusFailed, false},
		{"live to ready", AssetStatusLive, AssetStatusReady, true},
		{"live to preparing not allowed", AssetStatusLive, AssetStatusPreparing, false},
		{"failed to pending reset", AssetStatusFailed, AssetStatusPending, true},
		{"failed to preparing retry", AssetStatusFailed, AssetStatusPreparing, true},
		{"failed to ready not allowed", AssetStatusFailed, AssetStatusReady, false},
		{"self transition not allowed", AssetStatusReady, AssetStatusReady, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIsTerminalForWorker(t *testing.T) {
	terminal := []AssetStatus{AssetStatusReady, AssetStatusLive}
	for _, s := range terminal {
		if !s.IsTerminalForWorker() {
			t.Errorf("%s should be terminal for the worker", s)
		}
	}
	nonTerminal := []AssetStatus{AssetStatusPending, AssetStatusPreparing, AssetStatusFailed}
	for _, s := range nonTerminal {
		if s.IsTerminalForWorker() {
			t.Errorf("%s should not be terminal for the worker", s)
		}
	}
}

func TestApplyEnabledToggle(t *testing.T) {
	tests := []struct {
		name       string
		status     AssetStatus
		enabled    bool
		wantStatus AssetStatus
	}{
		{"enable ready promotes to live", AssetStatusReady, true, AssetStatusLive},
		{"disable live demotes to ready", AssetStatusLive, false, AssetStatusReady},
		{"enable pending keeps status", AssetStatusPending, true, AssetStatusPending},
		{"enable preparing keeps status", AssetStatusPreparing, true, AssetStatusPreparing},
		{"enable failed keeps status", AssetStatusFailed, true, AssetStatusFailed},
		{"disable ready keeps status", AssetStatusReady, false, AssetStatusReady},
		{"enable live keeps status", AssetStatusLive, true, AssetStatusLive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asset := &ProductAsset{Status: tt.status}
			got := asset.ApplyEnabledToggle(tt.enabled)
			if got != tt.wantStatus {
				t.Errorf("ApplyEnabledToggle(%v) on %s = %s, want %s", tt.enabled, tt.status, got, tt.wantStatus)
			}
			if asset.Enabled != tt.enabled {
				t.Errorf("Enabled flag = %v, want %v", asset.Enabled, tt.enabled)
			}
		})
	}
}
