package prompt

import (
	"fmt"
	"slices"
	"strings"

	"google.golang.org/genai"
)

func str() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }

func object(order []string, props map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{
		Type:             genai.TypeObject,
		Properties:       props,
		PropertyOrdering: order,
		Required:         required,
	}
}

// ContentPackSchema is the response schema enforced on the
// schema-constrained backend.
func ContentPackSchema() *genai.Schema {
	sourceMetadata := object(
		[]string{"topic_summary", "tool_or_feature_demoed", "transcript_summary"},
		map[string]*genai.Schema{
			"topic_summary":          str(),
			"tool_or_feature_demoed": {Type: genai.TypeString, Nullable: genai.Ptr(true)},
			"transcript_summary":     str(),
		},
		"topic_summary", "transcript_summary",
	)

	deconstruction := object(
		[]string{"core_idea_one_liner", "hook_analysis", "structure_breakdown", "why_this_video_works"},
		map[string]*genai.Schema{
			"core_idea_one_liner":  str(),
			"hook_analysis":        str(),
			"structure_breakdown":  str(),
			"why_this_video_works": str(),
		},
		"core_idea_one_liner", "hook_analysis", "structure_breakdown", "why_this_video_works",
	)

	hookVariants := object(
		[]string{"pattern_interrupt", "curiosity_gap", "social_proof"},
		map[string]*genai.Schema{
			"pattern_interrupt": str(),
			"curiosity_gap":     str(),
			"social_proof":      str(),
		},
		"pattern_interrupt", "curiosity_gap", "social_proof",
	)

	thumbnailVariants := object(
		[]string{"benefit_focused", "curiosity_focused", "authority_focused"},
		map[string]*genai.Schema{
			"benefit_focused":   str(),
			"curiosity_focused": str(),
			"authority_focused": str(),
		},
		"benefit_focused", "curiosity_focused", "authority_focused",
	)

	ctaVariants := object(
		[]string{"direct_action", "engagement_focused"},
		map[string]*genai.Schema{
			"direct_action":      str(),
			"engagement_focused": str(),
		},
		"direct_action", "engagement_focused",
	)

	performanceTags := object(
		[]string{"content_type", "emotional_trigger", "topic_cluster", "complexity_level"},
		map[string]*genai.Schema{
			"content_type":      str(),
			"emotional_trigger": str(),
			"topic_cluster":     str(),
			"complexity_level":  str(),
		},
		"content_type", "emotional_trigger", "topic_cluster", "complexity_level",
	)

	remix := object(
		[]string{
			"hooks", "hook_variants", "thumbnail_variants", "cta_variants",
			"short_script", "longer_script_version", "cta", "caption",
			"thumbnail_headline", "b_roll_notes", "linkedin_image", "linkedin_post",
			"performance_tags", "performance_hypothesis",
		},
		map[string]*genai.Schema{
			"hooks":                  {Type: genai.TypeArray, Items: str()},
			"hook_variants":          hookVariants,
			"thumbnail_variants":     thumbnailVariants,
			"cta_variants":           ctaVariants,
			"short_script":           str(),
			"longer_script_version":  str(),
			"cta":                    str(),
			"caption":                str(),
			"thumbnail_headline":     str(),
			"b_roll_notes":           str(),
			"linkedin_image":         str(),
			"linkedin_post":          str(),
			"performance_tags":       performanceTags,
			"performance_hypothesis": str(),
		},
		"hooks", "hook_variants", "thumbnail_variants", "cta_variants",
		"short_script", "cta", "caption", "thumbnail_headline", "b_roll_notes",
		"linkedin_image", "linkedin_post", "performance_tags", "performance_hypothesis",
	)

	return object(
		[]string{"source_metadata", "deconstruction", "audrey_remix"},
		map[string]*genai.Schema{
			"source_metadata": sourceMetadata,
			"deconstruction":  deconstruction,
			"audrey_remix":    remix,
		},
		"source_metadata", "deconstruction", "audrey_remix",
	)
}

// Describe renders a schema as an indented field list for backends that
// cannot enforce one.
func Describe(s *genai.Schema) string {
	var b strings.Builder
	describeProps(&b, s, 0)
	return strings.TrimRight(b.String(), "\n")
}

func describeProps(b *strings.Builder, s *genai.Schema, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, name := range propertyNames(s) {
		prop := s.Properties[name]
		req := "optional"
		if slices.Contains(s.Required, name) {
			req = "required"
		}
		fmt.Fprintf(b, "%s- %s (%s, %s)\n", indent, name, typeName(prop), req)
		if prop.Type == genai.TypeObject {
			describeProps(b, prop, depth+1)
		}
	}
}

func propertyNames(s *genai.Schema) []string {
	if len(s.PropertyOrdering) > 0 {
		return s.PropertyOrdering
	}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func typeName(s *genai.Schema) string {
	switch s.Type {
	case genai.TypeArray:
		if s.Items != nil {
			return "array of " + typeName(s.Items)
		}
		return "array"
	case genai.TypeObject:
		return "object"
	default:
		return strings.ToLower(string(s.Type))
	}
}
