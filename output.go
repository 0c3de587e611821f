package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/llehouerou/bilimusic/internal/avbv"
	"github.com/llehouerou/bilimusic/internal/playback"
	"github.com/llehouerou/bilimusic/internal/state"
	"github.com/llehouerou/bilimusic/internal/ui/render"
)

const listNameWidth = 48

// printPlaylist writes the stored playlist, numbered from 1 as move expects.
func printPlaylist(w io.Writer, st state.PlayerState) {
	fmt.Fprintf(w, "loop: %s\n", st.LoopMode)
	if len(st.Playlist) == 0 {
		fmt.Fprintln(w, "playlist is empty")
		return
	}
	for i, e := range st.Playlist {
		fmt.Fprintf(w, "%3d  %-12s  %s\n", i+1, e.ID, render.Truncate(e.Name, listNameWidth))
	}
}

// selectionPrinter returns a func that prints the selected entry each time
// it changes.
func selectionPrinter(w io.Writer) func(playback.State) {
	var last string
	return func(st playback.State) {
		e, ok := st.Selected()
		if !ok || e.ID == last {
			return
		}
		last = e.ID
		fmt.Fprintf(w, "▶ %s  %s  [loop %s]\n", e.Name, e.ID, st.LoopMode)
	}
}

// convertID returns both forms of an av or bv id.
func convertID(raw string) (av, bv string, err error) {
	av, err = avbv.Canonical(raw)
	if err != nil {
		return "", "", err
	}
	n, err := strconv.ParseInt(av[len("av"):], 10, 64)
	if err != nil {
		return "", "", fmt.Errorf("%w: %q", avbv.ErrInvalidID, raw)
	}
	return av, avbv.AVToBV(n), nil
}
