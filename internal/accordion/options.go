package accordion

import (
	"fmt"
	"strings"
	"time"

	"github.com/sheetfold/sheetfold/internal/config"
	"github.com/sheetfold/sheetfold/internal/filter"
	"github.com/sheetfold/sheetfold/internal/media"
	"github.com/sheetfold/sheetfold/internal/recency"
)

// HoverDelay is how long the pointer must rest on a question row before its
// lazy media is materialized.
const HoverDelay = 300 * time.Millisecond

var transitionEffects = map[string]string{
	"smooth":   "ease",
	"ease-in":  "ease-in",
	"ease-out": "ease-out",
	"bounce":   "cubic-bezier(0.68, -0.55, 0.265, 1.55)",
	"snap":     "cubic-bezier(0.95, 0.05, 0.795, 0.035)",
}

// TransitionTiming maps a configured transition effect to a CSS timing function.
func TransitionTiming(effect string) string {
	if v, ok := transitionEffects[effect]; ok {
		return v
	}
	return "ease"
}

// TextAnimation maps a text effect and direction to a keyframes name.
func TextAnimation(effect, direction string) string {
	dir := strings.ToUpper(direction[:min(1, len(direction))]) + direction[min(1, len(direction)):]
	switch effect {
	case "slide":
		return "slideFrom" + dir
	case "bounce":
		return "bounceFrom" + dir
	case "zoom":
		return "zoomIn"
	case "fade":
		return "fadeIn"
	case "blur":
		return "blurIn"
	case "rotate":
		return "rotateIn"
	case "elastic":
		return "elasticIn"
	default:
		return "none"
	}
}

// Options is an accordion's configuration resolved to column indices,
// palettes and durations.
type Options struct {
	ID             string
	SourceID       string
	Questions      []int
	Answer         int
	URLs           []int
	ViewedColumn   int
	UpdatedColumn  int
	StartingRow    int
	HeaderRow      int
	HideHeaderText []int
	Align          []string
	HeaderAlign    []string
	Widths         []int
	Filters        []filter.Condition

	QuestionPrefix string
	AnswerPrefix   string

	AutoNumber      bool
	AutoNumberStart int
	AutoNumberWidth int

	EnlargedThumbnail bool
	Media             media.Options

	TransitionSpeed time.Duration
	Transition      string
	Animation       string
	AnimationTime   time.Duration

	ViewedDelay   time.Duration
	ViewedText    string
	ViewedTitle   string
	ViewedPalette recency.Palette

	Heatmap        bool
	HeatmapColumns []int
	HeatmapPalette recency.Palette
	HeatmapTitle   string

	RetryDelay  time.Duration
	FetchOnLoad bool
	Search      config.Search
	Location    *time.Location
}

// NewOptions resolves a validated accordion configuration.
func NewOptions(a config.Accordion) (Options, error) {
	opts := Options{
		ID:                a.ID,
		SourceID:          a.DataSourceID(),
		Questions:         a.QuestionIndices(),
		Answer:            a.AnswerIndex(),
		URLs:              a.URLIndices(),
		ViewedColumn:      config.OptionalIndex(a.Columns.Viewed),
		UpdatedColumn:     config.OptionalIndex(a.Columns.LastUpdated),
		StartingRow:       a.Rows.StartingRow,
		HeaderRow:         a.Rows.HeaderRow,
		Align:             a.Columns.Align,
		HeaderAlign:       a.Columns.HeaderAlign,
		Widths:            a.Columns.Widths,
		QuestionPrefix:    a.Text.QuestionPrefix,
		AnswerPrefix:      a.Text.AnswerPrefix,
		AutoNumber:        a.AutoNumber.Enabled,
		AutoNumberStart:   1,
		AutoNumberWidth:   a.AutoNumber.Width,
		EnlargedThumbnail: a.Media.EnlargedThumbnail,
		Media:             media.OptionsFromConfig(a.Media),
		TransitionSpeed:   time.Duration(a.Animation.TransitionSpeedMS) * time.Millisecond,
		Transition:        TransitionTiming(a.Animation.TransitionEffect),
		Animation:         TextAnimation(a.Animation.TextEffect, a.Animation.TextEffectDirection),
		AnimationTime:     time.Duration(a.Animation.TextEffectMS) * time.Millisecond,
		ViewedDelay:       time.Duration(a.Viewed.DelayMS) * time.Millisecond,
		ViewedText:        a.Viewed.Text,
		ViewedTitle:       a.Viewed.Title,
		Heatmap:           a.Heatmap.Enabled,
		HeatmapTitle:      a.Heatmap.Title,
		RetryDelay:        time.Duration(a.Retry.DelayMS) * time.Millisecond,
		FetchOnLoad:       a.FetchOnLoad(),
		Search:            a.Search,
		Location:          time.Local,
	}
	if a.AutoNumber.Start != nil {
		opts.AutoNumberStart = *a.AutoNumber.Start
	}
	if opts.StartingRow <= 0 {
		opts.StartingRow = 1
	}
	for _, col := range a.Rows.HideHeaderText {
		opts.HideHeaderText = append(opts.HideHeaderText, config.OptionalIndex(col))
	}
	for _, col := range a.Heatmap.Columns {
		opts.HeatmapColumns = append(opts.HeatmapColumns, config.OptionalIndex(col))
	}
	for i, f := range a.Filters {
		col, err := config.ColumnIndex(f.Column)
		if err != nil {
			return opts, fmt.Errorf("filter %d: %w", i, err)
		}
		op, err := filter.ParseOp(f.Condition)
		if err != nil {
			return opts, fmt.Errorf("filter %d: %w", i, err)
		}
		opts.Filters = append(opts.Filters, filter.Condition{Column: col, Op: op, Value: f.Value})
	}

	var err error
	if opts.ViewedPalette, err = recency.ParsePalette(a.Viewed.ColorRecent, a.Viewed.ColorOld); err != nil {
		return opts, fmt.Errorf("viewed colors: %w", err)
	}
	if opts.HeatmapPalette, err = recency.ParsePalette(a.Heatmap.ColorRecent, a.Heatmap.ColorOld); err != nil {
		return opts, fmt.Errorf("heatmap colors: %w", err)
	}
	return opts, nil
}

func (o Options) questionURL(i int) int {
	if i < len(o.URLs) {
		return o.URLs[i]
	}
	return -1
}

func (o Options) align(i int, header bool) string {
	list := o.Align
	if header && o.HeaderRow != 0 {
		list = o.HeaderAlign
	}
	if i < len(list) && list[i] != "" {
		return list[i]
	}
	return "left"
}

func (o Options) width(i int) int {
	if i < len(o.Widths) {
		return o.Widths[i]
	}
	return 0
}

func (o Options) columns() int {
	n := len(o.Questions)
	if o.AutoNumber {
		n++
	}
	return n
}
