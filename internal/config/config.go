package config

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/sheetfold/sheetfold/internal/filter"
)

// IconColumn is the reserved question-column designator that renders the
// expand/collapse chevron instead of sheet data.
const IconColumn = "ICON"

// IconIndex is the column index reported for IconColumn.
const IconIndex = -1

type File struct {
	Version    int         `yaml:"version" json:"version"`
	Page       Page        `yaml:"page" json:"page"`
	Accordions []Accordion `yaml:"accordions" json:"accordions"`
}

type Page struct {
	Title string `yaml:"title,omitempty" json:"title,omitempty"`
}

type Accordion struct {
	ID         string     `yaml:"id" json:"id"`
	Source     Source     `yaml:"source" json:"source"`
	Columns    Columns    `yaml:"columns" json:"columns"`
	Rows       Rows       `yaml:"rows,omitempty" json:"rows,omitempty"`
	Filters    []Filter   `yaml:"filters,omitempty" json:"filters,omitempty"`
	Text       Text       `yaml:"text,omitempty" json:"text,omitempty"`
	Search     Search     `yaml:"search,omitempty" json:"search,omitempty"`
	Media      Media      `yaml:"media,omitempty" json:"media,omitempty"`
	Animation  Animation  `yaml:"animation,omitempty" json:"animation,omitempty"`
	AutoNumber AutoNumber `yaml:"auto_number,omitempty" json:"auto_number,omitempty"`
	Viewed     Viewed     `yaml:"viewed,omitempty" json:"viewed,omitempty"`
	Heatmap    Heatmap    `yaml:"heatmap,omitempty" json:"heatmap,omitempty"`
	Retry      Retry      `yaml:"retry,omitempty" json:"retry,omitempty"`
}

type Source struct {
	SpreadsheetID string `yaml:"spreadsheet_id,omitempty" json:"spreadsheet_id,omitempty"`
	Range         string `yaml:"range,omitempty" json:"range,omitempty"`
	APIKey        string `yaml:"api_key,omitempty" json:"-"`
	UseCORSProxy  bool   `yaml:"use_cors_proxy,omitempty" json:"use_cors_proxy,omitempty"`
	RichText      *bool  `yaml:"rich_text,omitempty" json:"rich_text,omitempty"`
	Workbook      string `yaml:"workbook,omitempty" json:"workbook,omitempty"`
	Sheet         string `yaml:"sheet,omitempty" json:"sheet,omitempty"`
	FetchOnLoad   *bool  `yaml:"fetch_on_load,omitempty" json:"fetch_on_load,omitempty"`
}

type Columns struct {
	Questions   []string `yaml:"questions" json:"questions"`
	Answer      string   `yaml:"answer" json:"answer"`
	URLs        []string `yaml:"urls,omitempty" json:"urls,omitempty"`
	Viewed      string   `yaml:"viewed,omitempty" json:"viewed,omitempty"`
	LastUpdated string   `yaml:"last_updated,omitempty" json:"last_updated,omitempty"`
	Align       []string `yaml:"align,omitempty" json:"align,omitempty"`
	HeaderAlign []string `yaml:"header_align,omitempty" json:"header_align,omitempty"`
	Widths      []int    `yaml:"widths,omitempty" json:"widths,omitempty"`
}

type Rows struct {
	StartingRow    int      `yaml:"starting_row,omitempty" json:"starting_row,omitempty"`
	HeaderRow      int      `yaml:"header_row,omitempty" json:"header_row,omitempty"`
	HideHeaderText []string `yaml:"hide_header_text,omitempty" json:"hide_header_text,omitempty"`
}

type Filter struct {
	Column    string `yaml:"column" json:"column"`
	Condition string `yaml:"condition" json:"condition"`
	Value     string `yaml:"value,omitempty" json:"value,omitempty"`
}

type Text struct {
	QuestionPrefix string `yaml:"question_prefix,omitempty" json:"question_prefix,omitempty"`
	AnswerPrefix   string `yaml:"answer_prefix,omitempty" json:"answer_prefix,omitempty"`
}

type Search struct {
	ShowBox                bool     `yaml:"show_box,omitempty" json:"show_box,omitempty"`
	Scope                  string   `yaml:"scope,omitempty" json:"scope,omitempty"`
	DelayMS                int      `yaml:"delay_ms,omitempty" json:"delay_ms,omitempty"`
	Placeholder            string   `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	PlaceholderSpeedMS     int      `yaml:"placeholder_speed_ms,omitempty" json:"placeholder_speed_ms,omitempty"`
	PlaceholderLoopDelayMS int      `yaml:"placeholder_loop_delay_ms,omitempty" json:"placeholder_loop_delay_ms,omitempty"`
	Common                 []string `yaml:"common,omitempty" json:"common,omitempty"`
}

type Media struct {
	ThumbMaxWidth       int      `yaml:"thumb_max_width,omitempty" json:"thumb_max_width,omitempty"`
	ThumbMaxHeight      int      `yaml:"thumb_max_height,omitempty" json:"thumb_max_height,omitempty"`
	AnswerMaxWidth      int      `yaml:"answer_max_width,omitempty" json:"answer_max_width,omitempty"`
	AnswerMaxHeight     int      `yaml:"answer_max_height,omitempty" json:"answer_max_height,omitempty"`
	AnswerAlign         string   `yaml:"answer_align,omitempty" json:"answer_align,omitempty"`
	MaintainAspectRatio *bool    `yaml:"maintain_aspect_ratio,omitempty" json:"maintain_aspect_ratio,omitempty"`
	YouTubeWidth        int      `yaml:"youtube_width,omitempty" json:"youtube_width,omitempty"`
	YouTubeHeight       int      `yaml:"youtube_height,omitempty" json:"youtube_height,omitempty"`
	YouTubeAlign        string   `yaml:"youtube_align,omitempty" json:"youtube_align,omitempty"`
	EnlargedThumbnail   bool     `yaml:"enlarged_thumbnail,omitempty" json:"enlarged_thumbnail,omitempty"`
	ImageHosts          []string `yaml:"image_hosts,omitempty" json:"image_hosts,omitempty"`
}

type Animation struct {
	TransitionSpeedMS   int    `yaml:"transition_speed_ms,omitempty" json:"transition_speed_ms,omitempty"`
	TransitionEffect    string `yaml:"transition_effect,omitempty" json:"transition_effect,omitempty"`
	TextEffect          string `yaml:"text_effect,omitempty" json:"text_effect,omitempty"`
	TextEffectDirection string `yaml:"text_effect_direction,omitempty" json:"text_effect_direction,omitempty"`
	TextEffectMS        int    `yaml:"text_effect_ms,omitempty" json:"text_effect_ms,omitempty"`
}

type AutoNumber struct {
	Enabled bool `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Start   *int `yaml:"start,omitempty" json:"start,omitempty"`
	Width   int  `yaml:"width,omitempty" json:"width,omitempty"`
}

type Viewed struct {
	DelayMS     int    `yaml:"delay_ms,omitempty" json:"delay_ms,omitempty"`
	Text        string `yaml:"text,omitempty" json:"text,omitempty"`
	Title       string `yaml:"title,omitempty" json:"title,omitempty"`
	ColorRecent string `yaml:"color_recent,omitempty" json:"color_recent,omitempty"`
	ColorOld    string `yaml:"color_old,omitempty" json:"color_old,omitempty"`
}

type Heatmap struct {
	Enabled     bool     `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Columns     []string `yaml:"columns,omitempty" json:"columns,omitempty"`
	ColorRecent string   `yaml:"color_recent,omitempty" json:"color_recent,omitempty"`
	ColorOld    string   `yaml:"color_old,omitempty" json:"color_old,omitempty"`
	Title       string   `yaml:"title,omitempty" json:"title,omitempty"`
}

type Retry struct {
	DelayMS int `yaml:"delay_ms,omitempty" json:"delay_ms,omitempty"`
}

var (
	defaultImageHosts = []string{
		"storage.googleapis.com/**",
		"drive.google.com/**",
		"lh*.googleusercontent.com/**",
	}
	alignments        = []string{"left", "center", "right"}
	searchScopes      = []string{"instance", "all"}
	transitionEffects = []string{"smooth", "ease-in", "ease-out", "bounce", "snap"}
	textEffects       = []string{"none", "slide", "bounce", "zoom", "fade", "blur", "rotate", "elastic"}
	effectDirections  = []string{"left", "right", "top", "bottom"}
)

func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config file %q: %w", path, err)
	}

	return Parse(data, path)
}

func Parse(data []byte, source string) (File, error) {
	var cfg File

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse YAML in %q: %w", source, err)
	}

	for i := range cfg.Accordions {
		cfg.Accordions[i].applyDefaults()
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return cfg, fmt.Errorf("invalid config in %q: %s", source, strings.Join(errs, "; "))
	}
	return cfg, nil
}

func (a *Accordion) applyDefaults() {
	if a.Rows.StartingRow <= 0 {
		a.Rows.StartingRow = 1
	}
	if a.Source.RichText == nil {
		a.Source.RichText = boolPtr(true)
	}
	if a.Source.FetchOnLoad == nil {
		a.Source.FetchOnLoad = boolPtr(true)
	}
	if a.Search.Scope == "" {
		a.Search.Scope = "instance"
	}
	if a.Search.DelayMS <= 0 {
		a.Search.DelayMS = 300
	}
	if a.Search.Placeholder == "" {
		a.Search.Placeholder = "Search..."
	}
	if a.Search.PlaceholderSpeedMS <= 0 {
		a.Search.PlaceholderSpeedMS = 80
	}
	if a.Search.PlaceholderLoopDelayMS <= 0 {
		a.Search.PlaceholderLoopDelayMS = 2000
	}
	if a.Media.AnswerMaxWidth <= 0 {
		a.Media.AnswerMaxWidth = 555
	}
	if a.Media.AnswerAlign == "" {
		a.Media.AnswerAlign = "center"
	}
	if a.Media.MaintainAspectRatio == nil {
		a.Media.MaintainAspectRatio = boolPtr(true)
	}
	if a.Media.YouTubeWidth <= 0 {
		a.Media.YouTubeWidth = 560
	}
	if a.Media.YouTubeHeight <= 0 {
		a.Media.YouTubeHeight = 315
	}
	if a.Media.YouTubeAlign == "" {
		a.Media.YouTubeAlign = "right"
	}
	if len(a.Media.ImageHosts) == 0 {
		a.Media.ImageHosts = slices.Clone(defaultImageHosts)
	}
	if a.Animation.TransitionSpeedMS <= 0 {
		a.Animation.TransitionSpeedMS = 300
	}
	if a.Animation.TransitionEffect == "" {
		a.Animation.TransitionEffect = "smooth"
	}
	if a.Animation.TextEffect == "" {
		a.Animation.TextEffect = "none"
	}
	if a.Animation.TextEffectDirection == "" {
		a.Animation.TextEffectDirection = "left"
	}
	if a.Animation.TextEffectMS <= 0 {
		a.Animation.TextEffectMS = 500
	}
	if a.AutoNumber.Start == nil {
		a.AutoNumber.Start = intPtr(1)
	}
	if a.AutoNumber.Width <= 0 {
		a.AutoNumber.Width = 50
	}
	if a.Viewed.Text == "" {
		a.Viewed.Text = "Viewed"
	}
	if a.Viewed.Title == "" {
		a.Viewed.Title = "Last viewed {{date}}"
	}
	if a.Viewed.ColorRecent == "" {
		a.Viewed.ColorRecent = "#2ecc71"
	}
	if a.Viewed.ColorOld == "" {
		a.Viewed.ColorOld = "#7f8c8d"
	}
	if a.Heatmap.ColorRecent == "" {
		a.Heatmap.ColorRecent = "#e74c3c"
	}
	if a.Heatmap.ColorOld == "" {
		a.Heatmap.ColorOld = "#3498db"
	}
	if a.Heatmap.Title == "" {
		a.Heatmap.Title = "{{date}}"
	}
	if a.Retry.DelayMS <= 0 {
		a.Retry.DelayMS = 10000
	}
}

func (cfg File) Validate() []string {
	var errs []string

	if cfg.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported config version %d", cfg.Version))
	}
	if len(cfg.Accordions) == 0 {
		errs = append(errs, "accordions must contain at least one accordion")
		return errs
	}

	ids := map[string]struct{}{}
	for i, a := range cfg.Accordions {
		prefix := fmt.Sprintf("accordions[%d]", i)
		if strings.TrimSpace(a.ID) == "" {
			errs = append(errs, prefix+".id is required")
		} else {
			if _, exists := ids[a.ID]; exists {
				errs = append(errs, fmt.Sprintf("%s.id duplicate %q", prefix, a.ID))
			}
			ids[a.ID] = struct{}{}
		}
		errs = append(errs, a.validate(prefix)...)
	}
	return errs
}

func (a Accordion) validate(prefix string) []string {
	var errs []string

	if strings.TrimSpace(a.Source.Workbook) == "" && strings.TrimSpace(a.Source.SpreadsheetID) == "" {
		errs = append(errs, prefix+".source requires spreadsheet_id or workbook")
	}

	if len(a.Columns.Questions) == 0 {
		errs = append(errs, prefix+".columns.questions must contain at least one column")
	}
	for j, col := range a.Columns.Questions {
		if _, err := QuestionColumnIndex(col); err != nil {
			errs = append(errs, fmt.Sprintf("%s.columns.questions[%d]: %v", prefix, j, err))
		}
	}
	if strings.TrimSpace(a.Columns.Answer) == "" {
		errs = append(errs, prefix+".columns.answer is required")
	} else if _, err := ColumnIndex(a.Columns.Answer); err != nil {
		errs = append(errs, fmt.Sprintf("%s.columns.answer: %v", prefix, err))
	}
	for j, col := range a.Columns.URLs {
		if strings.TrimSpace(col) == "" {
			continue
		}
		if _, err := ColumnIndex(col); err != nil {
			errs = append(errs, fmt.Sprintf("%s.columns.urls[%d]: %v", prefix, j, err))
		}
	}
	for _, c := range []struct{ name, col string }{
		{"viewed", a.Columns.Viewed},
		{"last_updated", a.Columns.LastUpdated},
	} {
		if c.col == "" {
			continue
		}
		if _, err := ColumnIndex(c.col); err != nil {
			errs = append(errs, fmt.Sprintf("%s.columns.%s: %v", prefix, c.name, err))
		}
	}
	for j, al := range a.Columns.Align {
		if !slices.Contains(alignments, al) {
			errs = append(errs, fmt.Sprintf("%s.columns.align[%d] must be one of left,center,right", prefix, j))
		}
	}
	for j, al := range a.Columns.HeaderAlign {
		if !slices.Contains(alignments, al) {
			errs = append(errs, fmt.Sprintf("%s.columns.header_align[%d] must be one of left,center,right", prefix, j))
		}
	}
	for j, w := range a.Columns.Widths {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s.columns.widths[%d] must be >= 0", prefix, j))
		}
	}

	if a.Rows.HeaderRow < 0 {
		errs = append(errs, prefix+".rows.header_row must be >= 0")
	}
	for j, col := range a.Rows.HideHeaderText {
		if _, err := ColumnIndex(col); err != nil {
			errs = append(errs, fmt.Sprintf("%s.rows.hide_header_text[%d]: %v", prefix, j, err))
		}
	}

	for j, f := range a.Filters {
		if _, err := ColumnIndex(f.Column); err != nil {
			errs = append(errs, fmt.Sprintf("%s.filters[%d].column: %v", prefix, j, err))
		}
		if _, err := filter.ParseOp(f.Condition); err != nil {
			errs = append(errs, fmt.Sprintf("%s.filters[%d].condition: %v", prefix, j, err))
		}
	}

	if !slices.Contains(searchScopes, a.Search.Scope) {
		errs = append(errs, prefix+".search.scope must be one of instance,all")
	}
	if !slices.Contains(alignments, a.Media.AnswerAlign) {
		errs = append(errs, prefix+".media.answer_align must be one of left,center,right")
	}
	if !slices.Contains(alignments, a.Media.YouTubeAlign) {
		errs = append(errs, prefix+".media.youtube_align must be one of left,center,right")
	}
	if a.Media.ThumbMaxWidth < 0 || a.Media.ThumbMaxHeight < 0 || a.Media.AnswerMaxHeight < 0 {
		errs = append(errs, prefix+".media sizes must be >= 0")
	}
	if !slices.Contains(transitionEffects, a.Animation.TransitionEffect) {
		errs = append(errs, prefix+".animation.transition_effect must be one of "+strings.Join(transitionEffects, ","))
	}
	if !slices.Contains(textEffects, a.Animation.TextEffect) {
		errs = append(errs, prefix+".animation.text_effect must be one of "+strings.Join(textEffects, ","))
	}
	if !slices.Contains(effectDirections, a.Animation.TextEffectDirection) {
		errs = append(errs, prefix+".animation.text_effect_direction must be one of "+strings.Join(effectDirections, ","))
	}
	if a.Viewed.DelayMS < 0 {
		errs = append(errs, prefix+".viewed.delay_ms must be >= 0")
	}

	for _, c := range []struct{ name, value string }{
		{"viewed.color_recent", a.Viewed.ColorRecent},
		{"viewed.color_old", a.Viewed.ColorOld},
		{"heatmap.color_recent", a.Heatmap.ColorRecent},
		{"heatmap.color_old", a.Heatmap.ColorOld},
	} {
		if _, err := colorful.Hex(c.value); err != nil {
			errs = append(errs, fmt.Sprintf("%s.%s invalid color %q", prefix, c.name, c.value))
		}
	}
	for j, col := range a.Heatmap.Columns {
		if _, err := ColumnIndex(col); err != nil {
			errs = append(errs, fmt.Sprintf("%s.heatmap.columns[%d]: %v", prefix, j, err))
		}
	}
	if a.Heatmap.Enabled && len(a.Heatmap.Columns) == 0 {
		errs = append(errs, prefix+".heatmap.columns is required when heatmap is enabled")
	}
	return errs
}

// ColumnIndex converts a single uppercase column letter into a zero-based index.
func ColumnIndex(designator string) (int, error) {
	if len(designator) != 1 || designator[0] < 'A' || designator[0] > 'Z' {
		return 0, fmt.Errorf("column %q must be a single letter A-Z", designator)
	}
	return int(designator[0] - 'A'), nil
}

// QuestionColumnIndex is ColumnIndex that also accepts IconColumn.
func QuestionColumnIndex(designator string) (int, error) {
	if designator == IconColumn {
		return IconIndex, nil
	}
	return ColumnIndex(designator)
}

// QuestionIndices returns one index per configured question column; IconIndex marks chevron columns.
func (a Accordion) QuestionIndices() []int {
	out := make([]int, 0, len(a.Columns.Questions))
	for _, col := range a.Columns.Questions {
		idx, _ := QuestionColumnIndex(col)
		out = append(out, idx)
	}
	return out
}

func (a Accordion) AnswerIndex() int {
	idx, _ := ColumnIndex(a.Columns.Answer)
	return idx
}

// URLIndices pairs with QuestionIndices by position; -1 means no URL column.
func (a Accordion) URLIndices() []int {
	out := make([]int, 0, len(a.Columns.URLs))
	for _, col := range a.Columns.URLs {
		idx, err := ColumnIndex(col)
		if err != nil {
			idx = -1
		}
		out = append(out, idx)
	}
	return out
}

// OptionalIndex returns -1 for an empty designator.
func OptionalIndex(designator string) int {
	if designator == "" {
		return -1
	}
	idx, err := ColumnIndex(designator)
	if err != nil {
		return -1
	}
	return idx
}

// DataSourceID identifies the remote dataset; the viewed store is namespaced by it.
func (a Accordion) DataSourceID() string {
	if id := strings.TrimSpace(a.Source.SpreadsheetID); id != "" {
		return id
	}
	return "workbook:" + strings.TrimSpace(a.Source.Workbook)
}

func (a Accordion) FetchOnLoad() bool {
	return a.Source.FetchOnLoad == nil || *a.Source.FetchOnLoad
}

func (a Accordion) RichText() bool {
	return a.Source.RichText == nil || *a.Source.RichText
}

func boolPtr(v bool) *bool { return &v }

func intPtr(v int) *int { return &v }
