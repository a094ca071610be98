// Package builder runs many nasm instances with bounded concurrency and
// collects one Result per instance.
package builder

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/ChainSafe/go-nasm/nasm"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Status is the outcome of one job.
type Status string

const (
	StatusOK      Status = "OK"
	StatusFailed  Status = "FAILED"
	StatusSkipped Status = "SKIPPED"
)

// Result describes how a single instance fared.
type Result struct {
	File     string        `json:"file"`
	Format   string        `json:"format"`
	Output   string        `json:"output,omitempty"`
	Status   Status        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Log      string        `json:"log,omitempty"` // captured assembler stdout and stderr
	Duration time.Duration `json:"duration"`

	err error
}

// Err returns the error the job failed with, if any.
func (r *Result) Err() error {
	return r.err
}

// Options control a build.
type Options struct {
	// Jobs bounds the number of concurrent assembler processes. Values below
	// one mean runtime.NumCPU().
	Jobs int
	// KeepGoing runs every job even after a failure. Otherwise jobs that
	// have not started yet are skipped once one fails.
	KeepGoing bool
}

// ErrBuildFailed is returned by Run when at least one job failed.
var ErrBuildFailed = errors.New("build failed")

// Run compiles every instance. Results are returned in input order; the
// error is ErrBuildFailed if any job failed, or ctx's error if the build was
// interrupted. The Stdout and Stderr of each instance are replaced so that
// its output ends up in Result.Log.
func Run(ctx context.Context, reqs []*nasm.Instance, opts Options) ([]*Result, error) {
	limit := opts.Jobs
	if limit < 1 {
		limit = runtime.NumCPU()
	}

	results := make([]*Result, len(reqs))
	for i, req := range reqs {
		results[i] = &Result{
			File:   req.File(),
			Format: req.Format().Flag(),
			Status: StatusSkipped,
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, req := range reqs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			err := compile(gctx, req, results[i])
			if err != nil && !opts.KeepGoing {
				return err
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	for _, r := range results {
		if r.Status == StatusFailed {
			return results, ErrBuildFailed
		}
	}
	return results, nil
}

func compile(ctx context.Context, req *nasm.Instance, result *Result) error {
	var output bytes.Buffer
	req.Stdout = &output
	req.Stderr = &output

	start := time.Now()
	path, err := req.CompileContext(ctx)
	result.Duration = time.Since(start)
	result.Log = output.String()

	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			// cancelled because another job failed
			log.Debug("job cancelled", "file", result.File)
			return err
		}
		log.Error("job failed", "file", result.File, "error", err)
		result.Status = StatusFailed
		result.Error = err.Error()
		result.err = err
		return err
	}

	log.Info("assembled", "file", result.File, "output", path, "duration", result.Duration)
	result.Status = StatusOK
	result.Output = path
	return nil
}
