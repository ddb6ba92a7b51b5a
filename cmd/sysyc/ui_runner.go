package main

import (
	"context"
	"io"

	"sysyc/internal/buildpipeline"
	"sysyc/internal/ui"
)

type buildOutcome struct {
	result *buildpipeline.Result
	err    error
}

// runBuildWithUI runs the build in the background and drives the progress
// view from its events.
func runBuildWithUI(ctx context.Context, out io.Writer, title string, files []string, req *buildpipeline.Request) (*buildpipeline.Result, error) {
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan buildOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = buildpipeline.ChannelSink{Ch: events}
		res, err := buildpipeline.Build(ctx, &reqCopy)
		outcomeCh <- buildOutcome{result: res, err: err}
		close(events)
	}()

	uiErr := ui.Run(out, title, files, events)
	if uiErr != nil {
		// Keep the build from blocking on a full channel.
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
