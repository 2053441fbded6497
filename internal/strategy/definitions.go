package strategy

import "github.com/nami-dev/nami/internal/aggregate"

// builtinDefinitions declares the ten research strategies. Stage graphs are
// the whole of a strategy: the engine interprets them generically.
func builtinDefinitions() []*Definition {
	return []*Definition{
		{
			ID:          1,
			Name:        "Multi-Agent Research Orchestrator",
			Description: "Hierarchical workflow: Mapper -> Diver -> Synthesizer with quality gating.",
			BestFor:     "Complex topics requiring structured decomposition and quality assessment",
			Stages: []StageSpec{
				{Name: "map", Roles: []string{"mapper"}, Mode: Sequential},
				{Name: "dive", Roles: []string{"diver"}, Mode: Sequential, DependsOn: []string{"map"}},
				{Name: "synthesize", Roles: []string{"synthesizer"}, Mode: Sequential,
					DependsOn: []string{"map", "dive"}, QualityGate: true, LoopTarget: "dive"},
			},
			MaxIterations: 3,
			Termination:   QualityGate,
		},
		{
			ID:          2,
			Name:        "Supervisor Researcher",
			Description: "Sequential workflow: Research -> Analyze -> Write -> Critique.",
			BestFor:     "Standard research reports with iterative refinement",
			Stages: []StageSpec{
				{Name: "research", Roles: []string{"researcher"}, Mode: Sequential},
				{Name: "analyze", Roles: []string{"analyst"}, Mode: Sequential, DependsOn: []string{"research"}},
				{Name: "write", Roles: []string{"writer"}, Mode: Sequential,
					DependsOn: []string{"research", "analyze"}, QualityGate: true, LoopTarget: "research"},
			},
			MaxIterations: 3,
			Termination:   QualityGate,
		},
		{
			ID:          3,
			Name:        "Delegation Research",
			Description: "Simple researcher-to-writer delegation.",
			BestFor:     "Straightforward, token-efficient research queries",
			Stages: []StageSpec{
				{Name: "research", Roles: []string{"researcher"}, Mode: Sequential},
				{Name: "write", Roles: []string{"writer"}, Mode: Sequential, DependsOn: []string{"research"}},
			},
			MaxIterations: 3,
			Termination:   FixedCount,
		},
		{
			ID:          4,
			Name:        "Parallel Swarm",
			Description: "Three parallel researchers, consensus building, then a writer.",
			BestFor:     "High-confidence findings through cross-validation",
			Stages: []StageSpec{
				{Name: "swarm", Roles: []string{"researcher-1", "researcher-2", "researcher-3"},
					Mode: Parallel, Aggregation: aggregate.PolicyConsensus},
				{Name: "write", Roles: []string{"writer"}, Mode: Sequential,
					DependsOn: []string{"swarm"}, QualityGate: true},
			},
			MaxIterations: 2,
			Termination:   QualityGate,
		},
		{
			ID:          5,
			Name:        "Iterative Refinement",
			Description: "Research -> Write with critique-driven refinement cycles.",
			BestFor:     "High-quality reports requiring progressive refinement",
			Stages: []StageSpec{
				{Name: "research", Roles: []string{"researcher"}, Mode: Sequential},
				{Name: "write", Roles: []string{"writer"}, Mode: Sequential,
					DependsOn: []string{"research"}, QualityGate: true},
			},
			MaxIterations: 3,
			Termination:   QualityGate,
		},
		{
			ID:          6,
			Name:        "Multi-Domain Expert",
			Description: "Academic, industry, and technical experts in parallel, then synthesis.",
			BestFor:     "Multi-perspective research combining theory and practice",
			Stages: []StageSpec{
				{Name: "experts", Roles: []string{"expert-academic", "expert-industry", "expert-technical"},
					Mode: Parallel, Aggregation: aggregate.PolicyConsensus},
				{Name: "synthesize", Roles: []string{"domain-synthesizer"}, Mode: Sequential,
					DependsOn: []string{"experts"}},
			},
			MaxIterations: 2,
			Termination:   FixedCount,
		},
		{
			ID:          7,
			Name:        "Debate-Driven",
			Description: "Advocate vs skeptic debate, judged, then written up.",
			BestFor:     "Balanced perspectives on controversial or debated topics",
			Stages: []StageSpec{
				{Name: "debate", Roles: []string{"advocate", "skeptic"},
					Mode: Parallel, Aggregation: aggregate.PolicyDebate},
				{Name: "judge", Roles: []string{"judge"}, Mode: Sequential, DependsOn: []string{"debate"}},
				{Name: "write", Roles: []string{"writer"}, Mode: Sequential,
					DependsOn: []string{"debate", "judge"}},
			},
			MaxIterations: 2,
			Termination:   FixedCount,
		},
		{
			ID:          8,
			Name:        "Hierarchical Research Network",
			Description: "Specialized research teams in parallel, synthesized with quality gating.",
			BestFor:     "Large-scale, multi-faceted research projects",
			Stages: []StageSpec{
				{Name: "teams", Roles: []string{"researcher-academic", "researcher-industry", "researcher-technical"},
					Mode: Parallel, Aggregation: aggregate.PolicyConsensus},
				{Name: "synthesize", Roles: []string{"synthesizer"}, Mode: Sequential,
					DependsOn: []string{"teams"}, QualityGate: true},
			},
			MaxIterations: 2,
			Termination:   QualityGate,
		},
		{
			ID:          9,
			Name:        "Real-Time Research",
			Description: "Fast, lightweight research for current events.",
			BestFor:     "Breaking news and time-sensitive queries",
			Stages: []StageSpec{
				{Name: "live", Roles: []string{"live-researcher"}, Mode: Sequential},
				{Name: "brief", Roles: []string{"brief-writer"}, Mode: Sequential, DependsOn: []string{"live"}},
			},
			MaxIterations: 1,
			Termination:   FixedCount,
		},
		{
			ID:          10,
			Name:        "Comparative Analysis",
			Description: "Side-by-side comparison, analysis, and recommendations.",
			BestFor:     "Decision-making and technology selection",
			Stages: []StageSpec{
				{Name: "compare", Roles: []string{"comparison-researcher"}, Mode: Sequential},
				{Name: "analyze", Roles: []string{"analyst"}, Mode: Sequential, DependsOn: []string{"compare"}},
				{Name: "recommend", Roles: []string{"recommender"}, Mode: Sequential,
					DependsOn: []string{"compare", "analyze"}},
				{Name: "write", Roles: []string{"writer"}, Mode: Sequential,
					DependsOn: []string{"compare", "analyze", "recommend"}},
			},
			MaxIterations: 2,
			Termination:   FixedCount,
		},
	}
}
