package tui

import (
	"time"

	"github.com/pedrolima/newsmood/internal/sentiment"
)

type recordsLoadedMsg struct {
	records   []sentiment.Record
	fetchedAt time.Time
	errs      []error
}

type errMsg struct {
	err error
}

type exportDoneMsg struct {
	path string
	err  error
}

type updateAvailableMsg struct {
	version string
}

type tickMsg time.Time
