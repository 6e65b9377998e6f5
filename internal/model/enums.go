package model

// Style selects the length and tone of the generated scripts.
type Style string

const (
	StylePunchy    Style = "punchy"
	StyleExplainer Style = "explainer"
	StyleDeepDive  Style = "deepdive"
)

var ValidStyles = []Style{StylePunchy, StyleExplainer, StyleDeepDive}

func (s Style) IsValid() bool {
	for _, v := range ValidStyles {
		if s == v {
			return true
		}
	}
	return false
}

// Backend selects the generation backend.
// Gemini is schema-constrained; Nano is fast and cheap with no guarantees.
type Backend string

const (
	BackendGemini Backend = "gemini"
	BackendNano   Backend = "nano"
)

var ValidBackends = []Backend{BackendGemini, BackendNano}

func (b Backend) IsValid() bool {
	return b == BackendGemini || b == BackendNano
}

// LinkedInTone selects the voice for a regenerated LinkedIn post
type LinkedInTone string

const (
	ToneThoughtLeader LinkedInTone = "thought_leader"
	ToneDataDriven    LinkedInTone = "data_driven"
	ToneStoryDriven   LinkedInTone = "story_driven"
	ToneHotTake       LinkedInTone = "hot_take"
)

var ValidLinkedInTones = []LinkedInTone{
	ToneThoughtLeader, ToneDataDriven, ToneStoryDriven, ToneHotTake,
}

func (t LinkedInTone) IsValid() bool {
	for _, v := range ValidLinkedInTones {
		if t == v {
			return true
		}
	}
	return false
}

// SourceType describes what a queue item was created from
type SourceType string

const (
	SourceVideo   SourceType = "video"
	SourceArticle SourceType = "article"
	SourceCreator SourceType = "creator"
)

// QueueStatus is the lifecycle state of a queue item
type QueueStatus string

const (
	QueueStatusPending    QueueStatus = "pending"
	QueueStatusProcessing QueueStatus = "processing"
	QueueStatusCompleted  QueueStatus = "completed"
	QueueStatusFailed     QueueStatus = "failed"
	QueueStatusScheduled  QueueStatus = "scheduled"
)

var ValidQueueStatuses = []QueueStatus{
	QueueStatusPending, QueueStatusProcessing, QueueStatusCompleted,
	QueueStatusFailed, QueueStatusScheduled,
}

// PublishPlatform is where a scheduled item gets posted
type PublishPlatform string

const (
	PublishLinkedIn PublishPlatform = "linkedin"
	PublishTwitter  PublishPlatform = "twitter"
	PublishBoth     PublishPlatform = "both"
)

// CreatorPlatform is the network a tracked creator publishes on
type CreatorPlatform string

const (
	CreatorYouTube   CreatorPlatform = "youtube"
	CreatorTikTok    CreatorPlatform = "tiktok"
	CreatorInstagram CreatorPlatform = "instagram"
)
