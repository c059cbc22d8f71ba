// Package profiles defines per-UE traffic profiles for the seeder: the
// benign service classes and the attack patterns, each as a set of metric
// distributions that samples are drawn from.
package profiles

import (
	"fmt"
	"os"

	"github.com/brianvoe/gofakeit/v6"
	"gopkg.in/yaml.v3"
)

// Dist is a sampled metric distribution: a center value with uniform jitter.
type Dist struct {
	Mean   float64 `yaml:"mean"`
	Jitter float64 `yaml:"jitter"`
}

// Profile describes one traffic class.
type Profile struct {
	Name    string          `yaml:"name"`
	Class   string          `yaml:"class"` // "benign" or "malicious"
	Metrics map[string]Dist `yaml:"metrics"`
}

// File is the YAML document shape for a profile pack.
type File struct {
	Profiles []Profile `yaml:"profiles"`
}

// Sample draws one metric map from the profile's distributions.
func (p Profile) Sample(f *gofakeit.Faker) map[string]float64 {
	out := make(map[string]float64, len(p.Metrics))
	for name, d := range p.Metrics {
		v := d.Mean
		if d.Jitter > 0 {
			v += f.Float64Range(-d.Jitter, d.Jitter)
		}
		out[name] = v
	}
	return out
}

// Load reads a profile pack from a YAML file.
func Load(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	if len(f.Profiles) == 0 {
		return nil, fmt.Errorf("profile pack %s is empty", path)
	}
	for _, p := range f.Profiles {
		if p.Class != "benign" && p.Class != "malicious" {
			return nil, fmt.Errorf("profile %q has invalid class %q", p.Name, p.Class)
		}
	}
	return f.Profiles, nil
}

// ByName selects a profile from a pack.
func ByName(pack []Profile, name string) (Profile, bool) {
	for _, p := range pack {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// Names lists the pack's profile names in pack order.
func Names(pack []Profile) []string {
	names := make([]string, 0, len(pack))
	for _, p := range pack {
		names = append(names, p.Name)
	}
	return names
}

// Defaults returns the built-in profile pack: the four benign service
// classes and the six flood patterns, with distributions roughly matching
// lab captures.
func Defaults() []Profile {
	benign := func(name string, thpDl, thpUl, prbDl, prbUl float64) Profile {
		return Profile{
			Name:  name,
			Class: "benign",
			Metrics: map[string]Dist{
				"RRU.PrbAvailDl":               {Mean: 106, Jitter: 0},
				"RRU.PrbAvailUl":               {Mean: 106, Jitter: 0},
				"RRU.PrbUsedDl":                {Mean: prbDl, Jitter: prbDl * 0.3},
				"RRU.PrbUsedUl":                {Mean: prbUl, Jitter: prbUl * 0.3},
				"RACH.PreambleDedCell":         {Mean: 1, Jitter: 1},
				"DRB.UEThpDl":                  {Mean: thpDl, Jitter: thpDl * 0.25},
				"DRB.UEThpUl":                  {Mean: thpUl, Jitter: thpUl * 0.25},
				"DRB.RlcPacketDropRateDl":      {Mean: 0.5, Jitter: 0.5},
				"DRB.RlcSduTransmittedVolumeDL": {Mean: thpDl / 8, Jitter: thpDl / 32},
				"DRB.RlcSduTransmittedVolumeUL": {Mean: thpUl / 8, Jitter: thpUl / 32},
				"CQI":                          {Mean: 12, Jitter: 3},
				"RSRP":                         {Mean: -85, Jitter: 10},
				"RSRQ":                         {Mean: -10, Jitter: 3},
				"DRB.RlcSduDelayDl":            {Mean: 8, Jitter: 4},
				"DRB.RlcDelayUl":               {Mean: 10, Jitter: 5},
			},
		}
	}
	flood := func(name string, thpUl, prbUl, delayUl float64) Profile {
		return Profile{
			Name:  name,
			Class: "malicious",
			Metrics: map[string]Dist{
				"RRU.PrbAvailDl":               {Mean: 106, Jitter: 0},
				"RRU.PrbAvailUl":               {Mean: 106, Jitter: 0},
				"RRU.PrbUsedDl":                {Mean: 5, Jitter: 4},
				"RRU.PrbUsedUl":                {Mean: prbUl, Jitter: prbUl * 0.15},
				"RACH.PreambleDedCell":         {Mean: 4, Jitter: 3},
				"DRB.UEThpDl":                  {Mean: 500, Jitter: 400},
				"DRB.UEThpUl":                  {Mean: thpUl, Jitter: thpUl * 0.2},
				"DRB.RlcPacketDropRateDl":      {Mean: 12, Jitter: 8},
				"DRB.RlcSduTransmittedVolumeDL": {Mean: 60, Jitter: 50},
				"DRB.RlcSduTransmittedVolumeUL": {Mean: thpUl / 8, Jitter: thpUl / 16},
				"CQI":                          {Mean: 7, Jitter: 4},
				"RSRP":                         {Mean: -95, Jitter: 12},
				"RSRQ":                         {Mean: -13, Jitter: 4},
				"DRB.RlcSduDelayDl":            {Mean: 25, Jitter: 15},
				"DRB.RlcDelayUl":               {Mean: delayUl, Jitter: delayUl * 0.4},
			},
		}
	}

	return []Profile{
		benign("embb", 80000, 12000, 70, 20),
		benign("voip", 90, 90, 3, 3),
		benign("urllc", 3000, 3000, 10, 10),
		benign("mtc", 20, 40, 1, 2),
		flood("udp_flood", 90000, 95, 60),
		flood("parallel_udp_flood", 110000, 100, 80),
		flood("pulsing_udp_flood", 70000, 85, 55),
		flood("small_packet_flood", 30000, 90, 70),
		flood("udp_fragmentation_flood", 85000, 92, 65),
		flood("parallel_tcp_flood", 95000, 98, 75),
	}
}
