// Copyright 2021 Andrew Werner.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package fasttrie

import (
	"math/rand"
	"strings"
	"time"

	"github.com/pingcap/errors"
	"go.uber.org/zap"
)

// RandSource supplies the uniformly distributed bits that drive the
// probabilistic split policy. *math/rand.Rand satisfies it.
type RandSource interface {
	Uint64() uint64
}

// SplitPolicy decides when a bucket is split in two.
type SplitPolicy int

const (
	// Probabilistic splits the bucket receiving a new key at that key with
	// probability 1/w after every successful Add.
	Probabilistic SplitPolicy = iota
	// Threshold splits a bucket at its median once it holds more than 2w
	// keys.
	Threshold
)

func (p SplitPolicy) String() string {
	switch p {
	case Probabilistic:
		return "probabilistic"
	case Threshold:
		return "threshold"
	default:
		return "unknown"
	}
}

// ParseSplitPolicy maps a policy name, as returned by String, to its value.
func ParseSplitPolicy(s string) (SplitPolicy, error) {
	switch strings.ToLower(s) {
	case "probabilistic", "":
		return Probabilistic, nil
	case "threshold":
		return Threshold, nil
	}
	return 0, errors.Errorf("unknown split policy %q", s)
}

type options struct {
	width  int
	rnd    RandSource
	policy SplitPolicy
	logger *zap.Logger
}

// Option configures a Set.
type Option func(*options)

// WithWidth narrows the key universe to [0, 2^width). The default is the
// bit width of the key type.
func WithWidth(width int) Option {
	return func(o *options) { o.width = width }
}

// WithRandSource sets the source used by the probabilistic split policy.
// The default is a math/rand generator seeded from the clock.
func WithRandSource(rnd RandSource) Option {
	return func(o *options) { o.rnd = rnd }
}

// WithSplitPolicy selects the bucket split policy.
func WithSplitPolicy(p SplitPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithLogger sets the logger used to report bucket splits and merges at
// debug level.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{policy: Probabilistic}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rnd == nil {
		o.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}
