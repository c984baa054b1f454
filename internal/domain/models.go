// Package domain defines the records held by the persisted collections
// store: render history entries, reusable public images, and design
// versions. These types are plain JSON documents; each collection is
// persisted whole under a fixed namespace key rather than row by row.
package domain

import "time"

// Action is the kind of generation a submission requests.
type Action string

const (
	// ActionRender produces a static image render of a floor plan.
	ActionRender Action = "render"
	// ActionVideoWalkthrough produces a walkthrough video.
	ActionVideoWalkthrough Action = "video-walkthrough"
	// Action360View is exposed as a selectable option but is not yet
	// supported by the submission path.
	Action360View Action = "360-view"
)

// Valid reports whether a is one of the known action kinds.
func (a Action) Valid() bool {
	switch a {
	case ActionRender, ActionVideoWalkthrough, Action360View:
		return true
	}
	return false
}

// MediaInfo describes an image artifact produced by a render action.
// Field names mirror the upstream rendering service response.
type MediaInfo struct {
	AbsoluteURL string `json:"absoluteUrl"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Filesize    int64  `json:"filesize"`
	Filename    string `json:"filename"`
}

// VideoInfo describes a video artifact produced by a walkthrough action.
// Field names mirror the upstream video service response.
type VideoInfo struct {
	URL         string `json:"url"`
	FileName    string `json:"file_name"`
	FileSize    int64  `json:"file_size"`
	ContentType string `json:"content_type"`
}

// RenderOutcome is the artifact a completed submission produced. Exactly one
// of Media/Video is set, chosen explicitly by the action that produced it
// rather than inferred from which field happens to be non-nil.
type RenderOutcome struct {
	Media *MediaInfo `json:"media,omitempty"`
	Video *VideoInfo `json:"video,omitempty"`
}

// ImageOutcome returns a RenderOutcome carrying an image artifact.
func ImageOutcome(m MediaInfo) RenderOutcome { return RenderOutcome{Media: &m} }

// VideoOutcome returns a RenderOutcome carrying a video artifact.
func VideoOutcome(v VideoInfo) RenderOutcome { return RenderOutcome{Video: &v} }

// RenderResult is one entry of the render history collection.
//
// Fields:
//   - ID: unique identifier assigned by the store at creation time.
//   - Description: the free-text prompt the user submitted.
//   - Model / Style: selected option identifiers; Style is empty for
//     non-render actions.
//   - Action: the generation kind that produced this record.
//   - ImageURL: the source floor-plan image used as model input.
//   - RenderedImageURL: the output reference used for thumbnailing (image
//     URL for renders, video URL for walkthroughs).
//   - Timestamp: creation time, assigned by the store.
//   - Media / Video: exactly one is populated, per Action.
type RenderResult struct {
	ID               string     `json:"id"`
	Description      string     `json:"description"`
	Model            string     `json:"model"`
	Style            string     `json:"style"`
	Action           Action     `json:"action"`
	ImageURL         string     `json:"imageUrl"`
	RenderedImageURL string     `json:"renderedImageUrl"`
	Timestamp        time.Time  `json:"timestamp"`
	Media            *MediaInfo `json:"media,omitempty"`
	Video            *VideoInfo `json:"video,omitempty"`
}

// PublicImage is a user-supplied image URL kept in a personal, persisted
// list for reuse. URLs are unique within the collection; adding a duplicate
// is a no-op.
type PublicImage struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
}

// Version is a named design version. The version collection keeps a
// "current" pointer that, when non-empty, always resolves to an existing
// record.
type Version struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// LibraryImage is one entry of the curated, hardcoded floor-plan catalog
// offered for selection. The catalog is immutable at runtime.
type LibraryImage struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}
