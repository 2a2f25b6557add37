package main

import (
	"testing"

	"github.com/san-kum/massspring/internal/config"
	"github.com/san-kum/massspring/internal/scenes"
	"github.com/spf13/cobra"
)

func TestStepSize(t *testing.T) {
	newCmd := func() *cobra.Command {
		cmd := &cobra.Command{Use: "test"}
		addRunFlags(cmd)
		return cmd
	}
	oneStep, _ := scenes.Get("one-step")
	cloth, _ := scenes.Get("cloth")

	tests := []struct {
		name string
		sc   scenes.Scenario
		flag string
		want float64
	}{
		{"scenario default", oneStep, "", 0.1},
		{"cloth default", cloth, "", 0.005},
		{"flag wins", oneStep, "0.02", 0.02},
		{"no scenario default", scenes.Scenario{Name: "custom"}, "", config.DefaultDt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newCmd()
			if tt.flag != "" {
				if err := cmd.Flags().Set("dt", tt.flag); err != nil {
					t.Fatal(err)
				}
			}
			if got := stepSize(cmd, tt.sc); got != tt.want {
				t.Errorf("stepSize = %v, want %v", got, tt.want)
			}
		})
	}
}
