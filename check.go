package main

import (
	"bytes"
	"context"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// CheckResult is the outcome of running one script in its own VM.
type CheckResult struct {
	Path   string
	Output string
	Faults []error
	Err    error
}

// OK reports whether the script ran without faults.
func (res CheckResult) OK() bool { return res.Err == nil && len(res.Faults) == 0 }

// Check runs each script to completion in a fresh VM built from opts,
// several at a time. A script that cannot be opened cancels those not yet
// started, and is returned as the error.
func Check(ctx context.Context, paths []string, opts func() ([]VMOption, error)) ([]CheckResult, error) {
	results := make([]CheckResult, len(paths))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		i, path := i, path
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			vmOpts, err := opts()
			if err != nil {
				f.Close()
				return err
			}
			results[i] = checkScript(ctx, path, append(vmOpts, WithInput(f)))
			return nil
		})
	}
	err := eg.Wait()
	return results, err
}

func checkScript(ctx context.Context, path string, opts []VMOption) CheckResult {
	res := CheckResult{Path: path}
	var out bytes.Buffer
	vm, err := New(append(opts, WithOutput(&out))...)
	if err != nil {
		res.Err = err
		return res
	}
	res.Err = vm.Run(ctx)
	if cerr := vm.Close(); res.Err == nil {
		res.Err = cerr
	}
	res.Faults = vm.Faults()
	res.Output = out.String()
	return res
}
