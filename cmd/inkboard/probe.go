// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogpu/inkboard/dispatch"
)

func newProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Create loops, wedge one and report liveness",
		Long: `Create --loops worker loops, block the one at --wedge with a task that never
returns until the command exits, then probe every loop concurrently with
CheckHang and print the verdicts. With --dispose-hung, loops found hung are
disposed.`,
		Args: cobra.NoArgs,
		RunE: runProbe,
	}

	cmd.Flags().Int("loops", 3, "Number of loops to create")
	cmd.Flags().Int("wedge", 0, "Index of the loop to wedge (-1 for none)")
	cmd.Flags().Duration("timeout", 0, "Probe timeout (default from config)")
	cmd.Flags().Bool("dispose-hung", false, "Dispose loops found hung")
	return cmd
}

type probeResult struct {
	name string
	id   dispatch.ID
	hung bool
	err  error
}

func runProbe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	n, _ := f.GetInt("loops")
	wedge, _ := f.GetInt("wedge")
	timeout, _ := f.GetDuration("timeout")
	disposeHung, _ := f.GetBool("dispose-hung")
	if n < 1 {
		return fmt.Errorf("--loops must be >= 1, got %d", n)
	}
	if timeout <= 0 {
		timeout = cfg.HangTimeout
	}

	ctx := cmd.Context()
	reg := dispatch.NewRegistry(cfg.RegistryOptions()...)
	defer reg.Close()

	release := make(chan struct{})
	defer close(release)

	ids := make([]dispatch.ID, 0, n)
	for range n {
		id, err := reg.Create(ctx, "probe")
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	if wedge >= 0 && wedge < n {
		l, err := reg.Lookup(ids[wedge])
		if err != nil {
			return err
		}
		if err := l.Submit(func() { <-release }); err != nil {
			return err
		}
	}

	start := time.Now()
	results := make([]probeResult, n)
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Go(func() {
			r := probeResult{id: id}
			if l, err := reg.Lookup(id); err == nil {
				r.name = l.Name()
			}
			r.hung, r.err = reg.CheckHang(ctx, id, timeout)
			results[i] = r
		})
	}
	wg.Wait()

	hung := 0
	for _, r := range results {
		verdict := "ok"
		switch {
		case r.err != nil:
			verdict = "error: " + r.err.Error()
		case r.hung:
			verdict = "hung"
			hung++
			if disposeHung {
				if err := reg.Dispose(r.id); err == nil {
					verdict = "hung, disposed"
				}
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-48s %s\n", r.name, verdict)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d loops hung (timeout %v, probed in %v); %d still registered\n",
		hung, n, timeout, time.Since(start).Round(time.Millisecond), reg.Len())
	return nil
}
