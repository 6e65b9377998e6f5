package model

import "time"

// ContentPack is the structured output of a remix. The three top-level
// sections are required; nested fields are whatever the backend produced.
type ContentPack struct {
	SourceMetadata *SourceMetadata `json:"source_metadata" validate:"required"`
	Deconstruction *Deconstruction `json:"deconstruction" validate:"required"`
	Remix          *Remix          `json:"audrey_remix" validate:"required"`
}

type SourceMetadata struct {
	TopicSummary        string  `json:"topic_summary"`
	ToolOrFeatureDemoed *string `json:"tool_or_feature_demoed,omitempty"`
	TranscriptSummary   string  `json:"transcript_summary"`
}

type Deconstruction struct {
	CoreIdeaOneLiner   string `json:"core_idea_one_liner"`
	HookAnalysis       string `json:"hook_analysis"`
	StructureBreakdown string `json:"structure_breakdown"`
	WhyThisVideoWorks  string `json:"why_this_video_works"`
}

// Remix is the creator-voice section of a content pack.
type Remix struct {
	Hooks                 []string          `json:"hooks"`
	HookVariants          HookVariants      `json:"hook_variants"`
	ThumbnailVariants     ThumbnailVariants `json:"thumbnail_variants"`
	CTAVariants           CTAVariants       `json:"cta_variants"`
	ShortScript           string            `json:"short_script"`
	LongerScriptVersion   string            `json:"longer_script_version,omitempty"`
	CTA                   string            `json:"cta"`
	Caption               string            `json:"caption"`
	ThumbnailHeadline     string            `json:"thumbnail_headline"`
	BRollNotes            string            `json:"b_roll_notes"`
	LinkedInImage         string            `json:"linkedin_image"`
	LinkedInPost          string            `json:"linkedin_post"`
	PerformanceTags       PerformanceTags   `json:"performance_tags"`
	PerformanceHypothesis string            `json:"performance_hypothesis"`
}

type HookVariants struct {
	PatternInterrupt string `json:"pattern_interrupt"`
	CuriosityGap     string `json:"curiosity_gap"`
	SocialProof      string `json:"social_proof"`
}

type ThumbnailVariants struct {
	BenefitFocused   string `json:"benefit_focused"`
	CuriosityFocused string `json:"curiosity_focused"`
	AuthorityFocused string `json:"authority_focused"`
}

type CTAVariants struct {
	DirectAction      string `json:"direct_action"`
	EngagementFocused string `json:"engagement_focused"`
}

type PerformanceTags struct {
	ContentType      string `json:"content_type"`
	EmotionalTrigger string `json:"emotional_trigger"`
	TopicCluster     string `json:"topic_cluster"`
	ComplexityLevel  string `json:"complexity_level"`
}

// RemixRecord is a persisted content pack together with its source URL.
type RemixRecord struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	URL       string    `json:"url"`
	ContentPack
}

// RemixRequest is the input for a video remix
type RemixRequest struct {
	URL   string  `json:"url" validate:"required,url"`
	Style Style   `json:"style" validate:"omitempty,oneof=punchy explainer deepdive"`
	Model Backend `json:"model" validate:"omitempty,oneof=gemini nano"`
}

// ArticleRemixRequest is the input for an article remix
type ArticleRemixRequest struct {
	URL   string  `json:"url" validate:"required,url"`
	Title string  `json:"title" validate:"max=500"`
	Style Style   `json:"style" validate:"omitempty,oneof=punchy explainer deepdive"`
	Model Backend `json:"model" validate:"omitempty,oneof=gemini nano"`
}

// LinkedInRegenerateRequest asks for a fresh LinkedIn post in a given tone
type LinkedInRegenerateRequest struct {
	SourceContent string       `json:"sourceContent" validate:"required"`
	Tone          LinkedInTone `json:"tone" validate:"required,oneof=thought_leader data_driven story_driven hot_take"`
}

// RemixResult is the uniform outcome of a remix: either success with data,
// or an error message. Never both.
type RemixResult struct {
	Success bool         `json:"success,omitempty"`
	Data    *ContentPack `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// LinkedInRegenerateResult carries a regenerated remix section
type LinkedInRegenerateResult struct {
	Success bool   `json:"success,omitempty"`
	Data    *Remix `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// GetID returns the record id.
func (r RemixRecord) GetID() string { return r.ID }
