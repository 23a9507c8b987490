package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"lyricsync/internal/store"
	"lyricsync/internal/subtitle/ass"
)

// cueTextWidth caps the Text column so long cues wrap instead of pushing the
// timing columns off screen.
const cueTextWidth = 60

// segmentsTable renders caption segments with their timing formatted the same
// way the burned subtitles carry it.
func segmentsTable(segments []store.Segment) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	tw.AppendHeader(table.Row{"Seq", "Start", "End", "Text"})
	for _, segment := range segments {
		tw.AppendRow(table.Row{
			strconv.FormatInt(segment.Seq, 10),
			ass.Timestamp(segment.Start),
			ass.Timestamp(segment.End),
			segment.Text,
		})
	}

	configs := make([]table.ColumnConfig, 0, 4)
	for i := 1; i <= 3; i++ {
		configs = append(configs, table.ColumnConfig{
			Number:      i,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	configs = append(configs, table.ColumnConfig{
		Number:      4,
		Align:       text.AlignLeft,
		AlignHeader: text.AlignLeft,
		WidthMax:    cueTextWidth,
	})
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
