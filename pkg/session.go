package display

import (
	"errors"
	"fmt"
	"io"
)

const NavigationPrompt = "Next event (q to exit/enter for next/number to skip to position)?"

// Session owns the store, canvas and navigation state for one viewing run.
type Session struct {
	Store    Store
	Canvas   Canvas
	Prompter Prompter
	Composer *Composer
	Nav      *Navigator
	// Shown counts the events drawn so far.
	Shown int
}

func NewSession(store Store, canvas Canvas, prompter Prompter, geom Geometry, nhitSel int64, points bool) (*Session, error) {
	if err := geom.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		Store:    store,
		Canvas:   canvas,
		Prompter: prompter,
		Composer: &Composer{Geometry: geom, Points: points},
		Nav:      NewNavigator(HitCounts(store.Events()), nhitSel),
	}, nil
}

// Run loops until the analyst quits or the filtered events are exhausted.
// Both ends are normal exits and return nil.
func (s *Session) Run() error {
	events := s.Store.Events()
	for {
		message := fmt.Sprintf("displaying event %d with nhit_sel=%d", s.Nav.Position(), s.Nav.Threshold)
		logger.Info(message, "session")

		index, ok := s.Nav.Current()
		if !ok {
			return nil
		}
		if err := s.show(events[index], len(events)); err != nil {
			return err
		}
		s.Shown++

		cmd, err := s.readCommand()
		if err != nil {
			return err
		}
		s.Nav.Apply(cmd)

		if err := s.Canvas.Clear(); err != nil {
			return fmt.Errorf("error clearing canvas: %w", err)
		}
	}
}

func (s *Session) show(event Event, nEvents int) error {
	data, err := LoadEvent(s.Store, event)
	if err != nil {
		return fmt.Errorf("error loading event %d: %w", event.ID, err)
	}
	if configuration.Verbosity > 1 {
		logger.Info(fmt.Sprintf("Event: %v", event), "session")
		if len(data.Tracks) > 0 {
			logger.Info(fmt.Sprintf("Track: %v", data.Tracks), "session")
		}
		logger.Info(fmt.Sprintf("Hits: %v", data.Hits), "session")
	}

	title := Title(event, nEvents, s.Store.Name())
	if _, err := s.Composer.Compose(s.Canvas, data, title); err != nil {
		return fmt.Errorf("error drawing event %d: %w", event.ID, err)
	}
	if err := s.Canvas.Present(); err != nil {
		return fmt.Errorf("error presenting event %d: %w", event.ID, err)
	}
	return nil
}

// readCommand prompts until the input parses. A closed input quits.
func (s *Session) readCommand() (Command, error) {
	for {
		line, err := s.Prompter.Prompt(NavigationPrompt)
		if errors.Is(err, io.EOF) {
			return Command{Kind: CommandQuit}, nil
		}
		if err != nil {
			return Command{}, fmt.Errorf("error reading navigation input: %w", err)
		}
		cmd, err := ParseCommand(line)
		var invalid *InvalidInputError
		if errors.As(err, &invalid) {
			logger.Error(invalid.Error())
			continue
		}
		if err != nil {
			return Command{}, err
		}
		return cmd, nil
	}
}
