package kv

import (
	"fmt"
	"io"

	"lintang/dronepatrol/pkg/concurrent"
	"lintang/dronepatrol/pkg/datastructure"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
	"github.com/uber/h3-go/v4"
)

const coverageWorkers = 4

// NewProgressBar returns the bar used by the offline steps. A hidden bar writes nowhere.
func NewProgressBar(max int, description string, visible bool) *progressbar.ProgressBar {
	var w io.Writer = io.Discard
	if visible {
		w = ansi.NewAnsiStdout()
	}
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

// SaveCoverage indexes the hotspots of locations by h3 cell and writes one entry per
// cell. It returns the number of cells written.
func (k *KVDB) SaveCoverage(layout string, locations []*datastructure.Location, showProgress bool) (int, error) {
	cells := GroupHotspotsByCell(locations)
	if len(cells) == 0 {
		return 0, nil
	}

	bar := NewProgressBar(len(cells), "[cyan][2/3][reset] saving h3 hotspot coverage to pebble db...", showProgress)

	workers := concurrent.NewWorkerPool[concurrent.CellJob, error](coverageWorkers, len(cells))
	for cell, ids := range cells {
		workers.AddJob(concurrent.CellJob{Layout: layout, Cell: cell.String(), HotspotIDs: ids})
	}
	workers.Close()

	workers.Start(k.saveCellJob)
	workers.Wait()

	var firstErr error
	saved := 0
	for err := range workers.CollectResults() {
		bar.Add(1)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		saved++
	}
	return saved, firstErr
}

func (k *KVDB) saveCellJob(job concurrent.CellJob) error {
	cell := h3.Cell(h3.IndexFromString(job.Cell))
	if !cell.IsValid() {
		return fmt.Errorf("invalid h3 cell %q", job.Cell)
	}
	return k.SaveCell(job.Layout, cell, job.HotspotIDs)
}
