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

// Command fasttrie-bench runs a seeded random workload of adds, removes and
// predecessor queries against a fasttrie.Set, optionally checking every
// answer against a google/btree reference.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ajwerner/fasttrie"
	"github.com/ajwerner/fasttrie/cmd/fasttrie-bench/config"
	"github.com/docker/go-units"
	"github.com/google/btree"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	oracleDegree = 32
	// checkEvery is how often, in operations, the workload polls for
	// cancellation.
	checkEvery = 1 << 12

	keyBytes       = 8
	trieNodeBytes  = 16
	bucketOverhead = 64
)

type stats struct {
	adds, removes, finds int
	added, removed, hits int
	elapsed              time.Duration
}

// oracle is the reference the workload is checked against.
type oracle struct {
	t *btree.BTreeG[uint64]
}

func newOracle() *oracle {
	return &oracle{t: btree.NewG(oracleDegree, func(a, b uint64) bool { return a < b })}
}

func (o *oracle) add(x uint64) bool {
	_, replaced := o.t.ReplaceOrInsert(x)
	return !replaced
}

func (o *oracle) remove(x uint64) bool {
	_, ok := o.t.Delete(x)
	return ok
}

func (o *oracle) find(x uint64) (got uint64, ok bool) {
	o.t.DescendLessOrEqual(x, func(item uint64) bool {
		got, ok = item, true
		return false
	})
	return got, ok
}

func keyGen(cfg *config.Config, rng *rand.Rand) func() uint64 {
	if cfg.KeyRange != 0 {
		return func() uint64 { return rng.Uint64() % cfg.KeyRange }
	}
	mask := ^uint64(0) >> uint(64-cfg.Width)
	return func() uint64 { return rng.Uint64() & mask }
}

func run(ctx context.Context, cfg *config.Config) (*fasttrie.Set[uint64], stats, error) {
	var st stats
	s := fasttrie.New[uint64](
		fasttrie.WithWidth(cfg.Width),
		fasttrie.WithSplitPolicy(cfg.Policy),
		fasttrie.WithRandSource(rand.New(rand.NewSource(cfg.Seed+1))),
		fasttrie.WithLogger(log.L().Named("fasttrie")),
	)
	var ref *oracle
	if cfg.Verify {
		ref = newOracle()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	next := keyGen(cfg, rng)

	start := time.Now()
	for i := 0; i < cfg.Ops; i++ {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return s, st, errors.Annotatef(err, "stopped after %d operations", i)
			}
		}
		x := next()
		switch r := rng.Float64(); {
		case r < cfg.AddRatio:
			st.adds++
			ok := s.Add(x)
			if ok {
				st.added++
			}
			if ref != nil && ref.add(x) != ok {
				return s, st, errors.Errorf("op %d: add(%d) = %v disagrees with reference", i, x, ok)
			}
		case r < cfg.AddRatio+cfg.RemoveRatio:
			st.removes++
			ok := s.Remove(x)
			if ok {
				st.removed++
			}
			if ref != nil && ref.remove(x) != ok {
				return s, st, errors.Errorf("op %d: remove(%d) = %v disagrees with reference", i, x, ok)
			}
		default:
			st.finds++
			got, ok := s.Find(x)
			if ok {
				st.hits++
			}
			if ref != nil {
				if want, wantOK := ref.find(x); want != got || wantOK != ok {
					return s, st, errors.Errorf("op %d: find(%d) = (%d, %v), reference has (%d, %v)",
						i, x, got, ok, want, wantOK)
				}
			}
		}
	}
	st.elapsed = time.Since(start)
	if ref != nil {
		if s.Len() != ref.t.Len() {
			return s, st, errors.Errorf("size %d, reference has %d", s.Len(), ref.t.Len())
		}
		if err := s.Check(); err != nil {
			return s, st, errors.Annotate(err, "final structure check")
		}
	}
	return s, st, nil
}

// estimateSize approximates the memory held by s: every key in a bucket and
// a full root-to-leaf path per representative.
func estimateSize(s *fasttrie.Set[uint64]) float64 {
	buckets := s.Buckets()
	return float64(s.Len()*keyBytes + len(buckets)*(s.Width()*trieNodeBytes+bucketOverhead))
}

func report(cfg *config.Config, s *fasttrie.Set[uint64], st stats) {
	buckets := s.Buckets()
	var largest int
	for _, b := range buckets {
		if b.Len > largest {
			largest = b.Len
		}
	}
	mean := 0.0
	if len(buckets) > 0 {
		mean = float64(s.Len()) / float64(len(buckets))
	}
	opsPerSec := 0.0
	if st.elapsed > 0 {
		opsPerSec = float64(cfg.Ops) / st.elapsed.Seconds()
	}
	log.Info("workload finished",
		zap.Int("width", cfg.Width),
		zap.Stringer("split-policy", cfg.Policy),
		zap.Int("ops", cfg.Ops),
		zap.Duration("elapsed", st.elapsed),
		zap.String("ops-per-sec", fmt.Sprintf("%.0f", opsPerSec)),
		zap.Int("adds", st.adds),
		zap.Int("added", st.added),
		zap.Int("removes", st.removes),
		zap.Int("removed", st.removed),
		zap.Int("finds", st.finds),
		zap.Int("hits", st.hits),
		zap.Bool("verified", cfg.Verify),
	)
	log.Info("final structure",
		zap.Int("size", s.Len()),
		zap.Int("buckets", len(buckets)),
		zap.String("mean-bucket", fmt.Sprintf("%.2f", mean)),
		zap.Int("largest-bucket", largest),
		zap.String("approx-memory", units.BytesSize(estimateSize(s))),
	)
}

func main() {
	cfg := config.NewConfig()
	err := cfg.Parse(os.Args[1:])
	defer logPanic()

	switch errors.Cause(err) {
	case nil:
	case pflag.ErrHelp:
		exit(0)
	default:
		log.Fatal("parse cmd flags error", zap.Error(err))
	}

	cfg.Logger, cfg.LogProps, err = log.InitLogger(&cfg.Log, zap.AddStacktrace(zapcore.FatalLevel))
	if err == nil {
		log.ReplaceGlobals(cfg.Logger, cfg.LogProps)
	} else {
		log.Fatal("initialize logger error", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	sc := make(chan os.Signal, 1)
	signal.Notify(sc,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)
	go func() {
		sig := <-sc
		log.Info("got signal to exit", zap.String("signal", sig.String()))
		cancel()
	}()

	s, st, err := run(ctx, cfg)
	if err != nil {
		log.Error("workload failed", zap.Error(err))
		exit(1)
	}
	report(cfg, s, st)
	exit(0)
}

// logPanic logs the panic reason and stack, then exit the process.
func logPanic() {
	if e := recover(); e != nil {
		log.Fatal("panic", zap.Reflect("recover", e))
	}
}

func exit(code int) {
	log.Sync()
	os.Exit(code)
}
