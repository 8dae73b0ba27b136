package ui

import (
	"geoprof/internal/pipeline"
	"geoprof/internal/progress"
)

type jobUpdateMsg struct {
	U progress.Update
}

type jobLogMsg struct {
	L progress.Log
}

type jobResultMsg struct {
	R progress.Result
}

type batchDoneMsg struct {
	Summary pipeline.Summary
}

type interruptMsg struct{}
