package subagent

import "github.com/nami-dev/nami/agent"

// Tool set names shared by the role catalog. Tool execution is internal to
// the capability; the engine only declares which tools a role may use.
var (
	researchTools = []string{"web-search", "fetch-page", "think"}
	analysisTools = []string{"think"}
	writingTools  = []string{"think"}
)

// catalog is the static role catalog. Role ids referenced by strategy
// definitions must resolve here; the registry validates that at assembly.
var catalog = map[string]agent.RoleSpec{
	"researcher": {
		ID:          "researcher",
		Description: "Gathers information from web and academic sources",
		Instructions: "You are a research specialist. Investigate the topic thoroughly, " +
			"extract key findings from available sources, and cite every source with a complete URL. " +
			"Document what you found and what you could not find. One finding per line.",
		Tools:  researchTools,
		Format: agent.FormatJSON,
	},
	"researcher-1": {
		ID:          "researcher-1",
		Description: "Parallel researcher focused on primary and authoritative sources",
		Instructions: "You are one of several independent researchers. Focus on primary and " +
			"authoritative sources. Report findings as one claim per line with sources.",
		Tools:  researchTools,
		Format: agent.FormatJSON,
	},
	"researcher-2": {
		ID:          "researcher-2",
		Description: "Parallel researcher focused on recent developments",
		Instructions: "You are one of several independent researchers. Focus on recent " +
			"developments and current data. Report findings as one claim per line with sources.",
		Tools:  researchTools,
		Format: agent.FormatJSON,
	},
	"researcher-3": {
		ID:          "researcher-3",
		Description: "Parallel researcher focused on critical perspectives",
		Instructions: "You are one of several independent researchers. Focus on critical " +
			"perspectives, limitations, and open problems. Report findings as one claim per line with sources.",
		Tools:  researchTools,
		Format: agent.FormatJSON,
	},
	"researcher-academic": {
		ID:           "researcher-academic",
		Description:  "Research team lead for peer-reviewed and academic sources",
		Instructions: "Research the topic through peer-reviewed papers and academic publications. One finding per line, each with a citation.",
		Tools:        researchTools,
		Format:       agent.FormatJSON,
	},
	"researcher-industry": {
		ID:           "researcher-industry",
		Description:  "Research team lead for industry reports and market data",
		Instructions: "Research the topic through industry reports, market analyses, and practitioner accounts. One finding per line, each with a citation.",
		Tools:        researchTools,
		Format:       agent.FormatJSON,
	},
	"researcher-technical": {
		ID:           "researcher-technical",
		Description:  "Research team lead for technical documentation and implementations",
		Instructions: "Research the topic through technical documentation, specifications, and implementations. One finding per line, each with a citation.",
		Tools:        researchTools,
		Format:       agent.FormatJSON,
	},
	"expert-academic": {
		ID:           "expert-academic",
		Description:  "Domain expert grounded in academic theory",
		Instructions: "You are an academic domain expert. Explain the theoretical foundations and state of research on the topic. One point per line.",
		Tools:        researchTools,
		Format:       agent.FormatJSON,
	},
	"expert-industry": {
		ID:           "expert-industry",
		Description:  "Domain expert grounded in industry practice",
		Instructions: "You are an industry domain expert. Explain real-world adoption, economics, and practical constraints of the topic. One point per line.",
		Tools:        researchTools,
		Format:       agent.FormatJSON,
	},
	"expert-technical": {
		ID:           "expert-technical",
		Description:  "Domain expert grounded in engineering detail",
		Instructions: "You are a technical domain expert. Explain how the topic works at an engineering level, with concrete mechanisms. One point per line.",
		Tools:        researchTools,
		Format:       agent.FormatJSON,
	},
	"live-researcher": {
		ID:           "live-researcher",
		Description:  "Speed-optimized researcher for time-sensitive topics",
		Instructions: "Research the topic quickly, prioritizing the most recent information. Breadth over depth; cite sources with dates.",
		Tools:        researchTools,
		Format:       agent.FormatJSON,
	},
	"comparison-researcher": {
		ID:           "comparison-researcher",
		Description:  "Researcher for side-by-side option comparison",
		Instructions: "Identify the options being compared and research each along the same dimensions. Present findings per option with sources.",
		Tools:        researchTools,
		Format:       agent.FormatJSON,
	},
	"mapper": {
		ID:           "mapper",
		Description:  "Maps the topic landscape into research areas",
		Instructions: "Break the topic into its major areas and subtopics. Produce a structured map of what needs investigating, one area per line.",
		Tools:        analysisTools,
	},
	"diver": {
		ID:           "diver",
		Description:  "Deep-dives into the mapped research areas",
		Instructions: "Using the topic map you were given, investigate each area in depth. Report detailed findings per area with sources.",
		Tools:        researchTools,
		Format:       agent.FormatJSON,
	},
	"analyst": {
		ID:           "analyst",
		Description:  "Analyzes research findings for patterns and gaps",
		Instructions: "Analyze the research you were given. Identify patterns, contradictions, and gaps. Preserve all source URLs exactly. Flag unverified claims.",
		Tools:        analysisTools,
	},
	"synthesizer": {
		ID:           "synthesizer",
		Description:  "Synthesizes multi-source findings into a coherent report",
		Instructions: "Synthesize the upstream findings into a complete, well-structured research report with inline citations and a sources section.",
		Tools:        writingTools,
	},
	"domain-synthesizer": {
		ID:           "domain-synthesizer",
		Description:  "Synthesizes multi-domain expert perspectives",
		Instructions: "Combine the expert perspectives you were given into one report that keeps each domain's view visible while drawing cross-domain conclusions.",
		Tools:        writingTools,
	},
	"writer": {
		ID:           "writer",
		Description:  "Creates well-structured research reports with proper citations",
		Instructions: "Write the final research report from the material you were given. Clear structure, inline markdown citations, complete sources section. If a critique is provided, address every point it raises.",
		Tools:        writingTools,
	},
	"brief-writer": {
		ID:           "brief-writer",
		Description:  "Writes concise intelligence briefs",
		Instructions: "Write a concise brief from the material you were given: key developments first, context second, sources with dates.",
		Tools:        writingTools,
	},
	"recommender": {
		ID:           "recommender",
		Description:  "Produces recommendations from comparative analysis",
		Instructions: "From the comparison and analysis you were given, produce clear recommendations with the conditions under which each option wins.",
		Tools:        analysisTools,
	},
	"advocate": {
		ID:           "advocate",
		Description:  "Argues the strongest case for the position",
		Instructions: "Argue the strongest evidence-based case FOR the topic's proposition. One argument per line, each backed by a source.",
		Tools:        researchTools,
		Format:       agent.FormatJSON,
	},
	"skeptic": {
		ID:           "skeptic",
		Description:  "Argues the strongest case against the position",
		Instructions: "Argue the strongest evidence-based case AGAINST the topic's proposition. One argument per line, each backed by a source.",
		Tools:        researchTools,
		Format:       agent.FormatJSON,
	},
	"judge": {
		ID:           "judge",
		Description:  "Weighs debate positions and renders a balanced judgment",
		Instructions: "Weigh the debate summary you were given. State which arguments hold up, which do not, and what remains genuinely open. Do not invent agreement.",
		Tools:        analysisTools,
	},
	"critic": {
		ID:          "critic",
		Description: "Evaluates research quality and provides constructive feedback",
		Instructions: "Evaluate the artifact you are given against the rubric in the request. " +
			"Respond with the exact JSON document requested and nothing else.",
		Tools: analysisTools,
	},
}

// LookupRole returns the role spec for an id.
func LookupRole(id string) (agent.RoleSpec, bool) {
	spec, ok := catalog[id]
	return spec, ok
}

// KnownRole reports whether a role id exists in the catalog.
func KnownRole(id string) bool {
	_, ok := catalog[id]
	return ok
}

// Roles returns the ids of all catalog roles.
func Roles() []string {
	ids := make([]string, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	return ids
}
