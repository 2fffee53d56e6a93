package logging

import "strings"

// ProgressSampler thins out vote progress logging. It emits when the
// completed fraction crosses a bucket boundary or when the stage (usually the
// hemisphere) changes.
type ProgressSampler struct {
	bucketPercent float64
	stage         string
	bucket        int
}

// NewProgressSampler returns a sampler with the given bucket width in percent
// (default 10).
func NewProgressSampler(bucketPercent float64) *ProgressSampler {
	if bucketPercent <= 0 {
		bucketPercent = 10
	}
	return &ProgressSampler{bucketPercent: bucketPercent, bucket: -1}
}

// ShouldLog reports whether done/total in stage deserves a log line. A nil
// sampler logs everything. A non-positive total is treated as unknown progress
// and only stage changes emit.
func (s *ProgressSampler) ShouldLog(stage string, done, total int) bool {
	if s == nil {
		return true
	}
	emit := false
	stage = strings.TrimSpace(stage)
	if stage != s.stage {
		s.stage = stage
		s.bucket = -1
		emit = true
	}
	if total <= 0 {
		return emit
	}
	if done > total {
		done = total
	}
	percent := float64(done) * 100 / float64(total)
	bucket := int(percent / s.bucketPercent)
	if bucket > s.bucket {
		s.bucket = bucket
		emit = true
	}
	return emit
}

// Percent is a helper for log attributes.
func Percent(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(done) * 100 / float64(total)
}

// Reset forgets the current stage.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.stage = ""
	s.bucket = -1
}
