package image

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/samber/lo"
)

const timestampLayout = "20060102150405"

// noStyle stands in for an unset style preset in file names.
const noStyle = "none"

// FileName returns dir/image_<timestamp>_<seed>_<sampler>_<strength>_<cfg>_<steps>_<style>.jpg
// for the defaulted request.
func FileName(dir string, at time.Time, r Request) string {
	r = r.WithDefaults()
	name := fmt.Sprintf("image_%s_%d_%s_%s_%s_%d_%s.jpg",
		at.UTC().Format(timestampLayout),
		r.Seed,
		r.Sampler,
		strconv.FormatFloat(r.Strength, 'f', -1, 64),
		strconv.FormatFloat(r.CfgScale, 'f', -1, 64),
		r.Steps,
		lo.Ternary(r.Style != "", string(r.Style), noStyle),
	)
	return filepath.Join(dir, name)
}
