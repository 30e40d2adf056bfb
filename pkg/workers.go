package display

import (
	"errors"
	"fmt"
	"sync"
)

// RenderJob is one loaded event waiting to be drawn.
type RenderJob struct {
	Data  EventData
	Title string
}

type RenderResult struct {
	EventID int64
	Err     error
}

// Batch draws every selected event without prompting. Events are read by a
// single goroutine, since the stores are not safe for concurrent use, and
// drawn by NumWorkers workers, each owning its own canvas.
type Batch struct {
	Store      Store
	NewCanvas  func() (Canvas, error)
	Geometry   Geometry
	NHitSel    int64
	Points     bool
	NumWorkers int
	// Shown counts the events drawn successfully.
	Shown int
}

func renderEvent(id int, composer *Composer, canvas Canvas, job RenderJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("Worker %d recovered from panic: %v", id, r))
			err = fmt.Errorf("worker %d panicked on event %d: %v", id, job.Data.Event.ID, r)
		}
	}()
	if _, err := composer.Compose(canvas, job.Data, job.Title); err != nil {
		return err
	}
	if err := canvas.Present(); err != nil {
		return err
	}
	return canvas.Clear()
}

func renderWorker(id int, composer *Composer, canvas Canvas, jobs <-chan RenderJob, results chan<- RenderResult) {
	for job := range jobs {
		if configuration.Verbosity > 1 {
			logger.Info(fmt.Sprintf("Worker %d processing event %d", id, job.Data.Event.ID), "workers")
		}
		err := renderEvent(id, composer, canvas, job)
		results <- RenderResult{EventID: job.Data.Event.ID, Err: err}
	}
}

// sendEventsToWorkers loads the selected events in order and closes jobs
// when done. The first load error stops the feed.
func sendEventsToWorkers(store Store, nav *Navigator, jobs chan<- RenderJob) error {
	defer close(jobs)
	events := store.Events()
	for index, ok := nav.Current(); ok; index, ok = nav.Current() {
		data, err := LoadEvent(store, events[index])
		if err != nil {
			return fmt.Errorf("error loading event %d: %w", events[index].ID, err)
		}
		jobs <- RenderJob{Data: data, Title: Title(events[index], len(events), store.Name())}
		nav.Advance()
	}
	return nil
}

// Run renders all events and returns the joined errors of every failed one.
func (b *Batch) Run() error {
	if err := b.Geometry.Validate(); err != nil {
		return err
	}
	nWorkers := b.NumWorkers
	if nWorkers < 1 {
		nWorkers = 1
	}
	canvases := make([]Canvas, nWorkers)
	for i := range canvases {
		canvas, err := b.NewCanvas()
		if err != nil {
			return err
		}
		canvases[i] = canvas
	}

	nav := NewNavigator(HitCounts(b.Store.Events()), b.NHitSel)
	jobs := make(chan RenderJob, nWorkers)
	results := make(chan RenderResult, nWorkers)

	var wg sync.WaitGroup
	for w := 0; w < nWorkers; w++ {
		wg.Add(1)
		composer := &Composer{Geometry: b.Geometry, Points: b.Points}
		go func(id int, canvas Canvas) {
			defer wg.Done()
			renderWorker(id, composer, canvas, jobs, results)
		}(w+1, canvases[w])
	}

	var loadErr error
	go func() {
		loadErr = sendEventsToWorkers(b.Store, nav, jobs)
		wg.Wait()
		close(results)
	}()

	var errs []error
	for result := range results {
		if result.Err != nil {
			errs = append(errs, fmt.Errorf("event %d: %w", result.EventID, result.Err))
			continue
		}
		b.Shown++
	}
	return errors.Join(append([]error{loadErr}, errs...)...)
}
