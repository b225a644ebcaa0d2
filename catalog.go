package showcase

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// widthPlaceholder is replaced by the selected width tier in item sources.
const widthPlaceholder = "{width}"

// DetailKind is the type of content a hotspot reveals.
type DetailKind string

const (
	DetailImage DetailKind = "image"
	DetailLink  DetailKind = "link"
	DetailPDF   DetailKind = "pdf"
)

// HotspotDetail is the optional content behind a hotspot.
type HotspotDetail struct {
	Kind  DetailKind `json:"type"`
	URL   string     `json:"src"`
	Title string     `json:"title,omitempty"`
}

// Hotspot is a positioned annotation on an image. X and Y are normalized
// to [0, 1] relative to the item's content.
type Hotspot struct {
	X           float64        `json:"x"`
	Y           float64        `json:"y"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Icon        string         `json:"icon,omitempty"`
	Detail      *HotspotDetail `json:"detail,omitempty"`
}

// MediaItem is one entry of the carousel. Items are read-only once the
// composition has been parsed.
type MediaItem struct {
	Kind MediaKind `json:"type"`
	// Src is the image, video, or panorama source. Image sources may embed
	// {width} to select a width tier.
	Src string `json:"src,omitempty"`
	// Poster is the still shown before a video plays.
	Poster string `json:"poster,omitempty"`
	// Frames are the ordered flipbook sources of a 360 spin.
	Frames []string `json:"frames,omitempty"`
	// WidthRatio is the share of the player width the item occupies;
	// zero means 1.
	WidthRatio float64   `json:"widthRatio,omitempty"`
	Title      string    `json:"title,omitempty"`
	Hotspots   []Hotspot `json:"hotspots,omitempty"`
	// CustomID names a host-provided slot for MediaCustom items.
	CustomID string `json:"id,omitempty"`
}

// SourceFor returns src with the {width} placeholder replaced.
func SourceFor(src string, width int) string {
	if width <= 0 {
		return src
	}
	return strings.ReplaceAll(src, widthPlaceholder, strconv.Itoa(width))
}

// FrameSource returns the source of spin frame i at the given width.
func (m MediaItem) FrameSource(i, width int) string {
	if i < 0 || i >= len(m.Frames) {
		return ""
	}
	return SourceFor(m.Frames[i], width)
}

// EffectiveWidthRatio returns WidthRatio, defaulting to 1.
func (m MediaItem) EffectiveWidthRatio() float64 {
	if m.WidthRatio <= 0 || m.WidthRatio > 1 {
		return 1
	}
	return m.WidthRatio
}

func (m MediaItem) validate() error {
	switch m.Kind {
	case MediaImage, MediaInteriorPanorama, MediaVideo:
		if m.Src == "" {
			return fmt.Errorf("%s item has no src", m.Kind)
		}
	case MediaSpin360:
		if len(m.Frames) == 0 {
			return fmt.Errorf("360 item has no frames")
		}
	case MediaCustom:
	default:
		return fmt.Errorf("unknown item kind %d", m.Kind)
	}
	if len(m.Hotspots) > 0 && !m.Kind.SupportsHotspots() {
		return fmt.Errorf("%s item cannot carry hotspots", m.Kind)
	}
	for i, h := range m.Hotspots {
		if h.X < 0 || h.X > 1 || h.Y < 0 || h.Y > 1 {
			return fmt.Errorf("hotspot %d at (%v,%v) outside [0,1]", i, h.X, h.Y)
		}
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (k MediaKind) MarshalText() ([]byte, error) {
	if int(k) >= len(mediaKindNames) {
		return nil, fmt.Errorf("unknown media kind %d", k)
	}
	return []byte(mediaKindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Both "360" and
// "spin" name a spin; "interior" is accepted for panoramas.
func (k *MediaKind) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "image":
		*k = MediaImage
	case "video":
		*k = MediaVideo
	case "360", "spin":
		*k = MediaSpin360
	case "interior-360", "interior":
		*k = MediaInteriorPanorama
	case "custom":
		*k = MediaCustom
	default:
		return fmt.Errorf("unknown media kind %q", b)
	}
	return nil
}

// Category is an ordered group of items.
type Category struct {
	ID    string      `json:"id"`
	Title string      `json:"title"`
	Items []MediaItem `json:"items"`
}

// Composition is the catalog of one viewer instance. It is loaded once and
// never mutated by the engine.
type Composition struct {
	AspectRatio    string     `json:"aspectRatio"`
	ImageHdWidth   int        `json:"imageHdWidth"`
	ImageSubWidths []int      `json:"imageSubWidths"`
	Categories     []Category `json:"categories"`
}

// ParseComposition decodes and validates catalog JSON.
func ParseComposition(data []byte) (*Composition, error) {
	var c Composition
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse composition: %w: %w", ErrInvalidComposition, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the structural rules the engine depends on.
func (c *Composition) Validate() error {
	if _, _, err := c.Ratio(); err != nil {
		return err
	}
	if c.ImageHdWidth <= 0 {
		return fmt.Errorf("composition: imageHdWidth %d: %w", c.ImageHdWidth, ErrInvalidComposition)
	}
	for _, w := range c.ImageSubWidths {
		if w <= 0 {
			return fmt.Errorf("composition: sub-width %d: %w", w, ErrInvalidComposition)
		}
	}
	seen := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.ID == "" {
			return fmt.Errorf("composition: category without id: %w", ErrInvalidComposition)
		}
		if seen[cat.ID] {
			return fmt.Errorf("composition: duplicate category %q: %w", cat.ID, ErrInvalidComposition)
		}
		seen[cat.ID] = true
		for i, item := range cat.Items {
			if err := item.validate(); err != nil {
				return fmt.Errorf("composition: category %q item %d: %w: %w", cat.ID, i, ErrInvalidComposition, err)
			}
		}
	}
	return nil
}

// Ratio parses AspectRatio ("W:H").
func (c *Composition) Ratio() (w, h float64, err error) {
	left, right, ok := strings.Cut(c.AspectRatio, ":")
	if ok {
		w, err = strconv.ParseFloat(strings.TrimSpace(left), 64)
		if err == nil {
			h, err = strconv.ParseFloat(strings.TrimSpace(right), 64)
		}
	}
	if !ok || err != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("composition: aspect ratio %q: %w", c.AspectRatio, ErrInvalidComposition)
	}
	return w, h, nil
}

// FitHeight returns the container height for a given width that honors the
// aspect ratio. A malformed ratio yields width (square).
func (c *Composition) FitHeight(width float64) float64 {
	w, h, err := c.Ratio()
	if err != nil {
		return width
	}
	return width * h / w
}

// AvailableWidths returns the sub-widths together with the hd width,
// ascending and without duplicates.
func (c *Composition) AvailableWidths() []int {
	widths := make([]int, 0, len(c.ImageSubWidths)+1)
	widths = append(widths, c.ImageSubWidths...)
	widths = append(widths, c.ImageHdWidth)
	slices.Sort(widths)
	return slices.Compact(widths)
}

// Category returns the category with the given id.
func (c *Composition) Category(id string) (Category, error) {
	for _, cat := range c.Categories {
		if cat.ID == id {
			return cat, nil
		}
	}
	return Category{}, fmt.Errorf("category %q: %w", id, ErrCategoryNotFound)
}
