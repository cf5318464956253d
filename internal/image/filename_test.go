package image

import (
	"path/filepath"
	"testing"
	"time"
)

func TestFileName(t *testing.T) {
	at := time.Date(2026, 10, 19, 14, 30, 5, 0, time.FixedZone("CEST", 2*60*60))
	got := FileName("out", at, Request{
		Prompt:   "a red shoe",
		Seed:     1,
		Strength: 0.35,
		Style:    StylePhotographic,
	})
	want := filepath.Join("out", "image_20261019123005_1_K_DPMPP_2M_0.35_7_30_photographic.jpg")
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestFileNameWithoutStyle(t *testing.T) {
	at := time.Date(2026, 10, 19, 12, 30, 5, 0, time.UTC)
	got := FileName("out", at, Request{Prompt: "a red shoe", Seed: 1, Steps: 30, Sampler: SamplerDPMPP2M})
	want := filepath.Join("out", "image_20261019123005_1_K_DPMPP_2M_0_7_30_none.jpg")
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
