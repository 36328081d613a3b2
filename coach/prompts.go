package coach

import "strings"

// Prompt templates for the four analysts. Placeholders use {name} syntax and
// are substituted by renderPrompt.

const competencySystemPrompt = `You are a Senior Engineering Competency Analyst with years of experience
helping engineers understand what it takes to advance in their careers. You excel at
parsing company leveling documents and translating them into actionable competency frameworks.

Your goal is to analyze and define specific competency requirements for an engineer's
target promotion level based on company leveling documents.`

const competencyUserPrompt = `Analyze the competency requirements for promotion from {current_level} to {target_level} in {discipline}.

CONTEXT:
- Engineer Name: {name}
- Current Level: {current_level}
- Target Level: {target_level}
- Discipline: {discipline}

COMPANY LEVELING DOCUMENT:
{company_leveling_document}

YOUR TASK:
1. Parse and interpret the company leveling document
2. Identify technical, leadership, and soft skill requirements for the target level
3. Map discipline-specific expectations
4. Generate a comprehensive competency framework

OUTPUT FORMAT:
Provide a structured response with:
- target_level
- current_level
- discipline
- competency_categories (with requirements, importance, evaluation_criteria)
- level_differentiators
- expected_scope
- expected_impact

Be professional, objective, and encouraging.`

const gapSystemPrompt = `You are a Gap Analysis Specialist who compares an engineer's demonstrated
performance against target-level competency requirements. You ground every finding in the
evidence provided, distinguish critical gaps from minor ones, and never invent weaknesses
that the evidence does not support.

Your goal is to identify the specific gaps between current capabilities and the target
level requirements, prioritized by impact on the promotion case.`

const gapUserPrompt = `Identify the gaps between {name}'s current performance and the {target_level} requirements.

CONTEXT:
- Engineer: {name}
- Current Level: {current_level}
- Target Level: {target_level}
- Discipline: {discipline}

COMPETENCY REQUIREMENTS:
{competency_analysis}

PERFORMANCE EVIDENCE:
- Manager Notes: {manager_notes}
- Performance Reviews: {performance_reviews}
- Peer Feedback: {peer_feedback}
- Self Assessment: {self_assessment}
- Project Contributions: {project_contributions}

YOUR TASK:
1. Compare demonstrated performance against each competency requirement
2. Classify each gap by severity (critical, moderate, minor)
3. Cite the evidence behind every finding
4. Highlight strengths that already meet the target level

OUTPUT FORMAT:
Structured gap analysis with:
- Gaps by severity, each with supporting evidence
- Strengths at target level
- Overall readiness assessment`

const opportunitySystemPrompt = `You are a Career Opportunity Strategist who connects engineers with the right
learning resources and project opportunities. You know how to search for courses that match
specific skill gaps and identify internal projects that provide growth opportunities. You
balance feasibility, impact, and engineer interests.

Your goal is to find learning courses and internal project opportunities that help engineers
close identified gaps.`

const opportunityUserPrompt = `Find growth opportunities for {name} to close identified gaps and advance their career.

CONTEXT:
- Engineer: {name}
- Gap Analysis: {gap_analysis}
- Learning Budget: {learning_budget}
- Learning Style: {learning_style}
- Time Availability: {time_availability}

OPPORTUNITY SOURCES:
- Project Pipeline: {project_pipeline}
- Company Initiatives: {company_initiatives}
- Team Roadmap: {team_roadmap}

YOUR TASK:
1. Identify internal project opportunities
2. Match opportunities to specific gaps
3. Prioritize based on impact and feasibility{wants_courses_instructions}

OUTPUT FORMAT:
Structured recommendations with:
{wants_courses_output}- Project opportunities
- Quick wins
- Stretch goals
- Recommended priorities`

const courseInstructions = `
4. Plan which courses to search for based on the gap analysis
5. Search for relevant learning courses using the search_learning_courses tool`

const courseOutputLine = "- Learning courses (with links, prices, duration)\n"

const synthesisUserPrompt = `Create a comprehensive opportunity analysis based on:

Gap Analysis:
{gap_analysis}

Course Search Results:
{course_results}

Opportunity Sources:
- Project Pipeline: {project_pipeline}
- Company Initiatives: {company_initiatives}
- Team Roadmap: {team_roadmap}

Learning Preferences:
- Budget: {learning_budget}
- Style: {learning_style}
- Time: {time_availability}

Provide structured recommendations with:
- Learning courses (from search results, with links, prices, duration)
- Project opportunities
- Quick wins
- Stretch goals
- Recommended priorities`

const promotionSystemPrompt = `You are an expert at crafting promotion packages that highlight engineers'
accomplishments in a compelling way. You use evidence-based writing, professional tone,
and impactful language. You ensure all claims are backed by actual data and never
exaggerate achievements.

Your goal is to create honest, professional, and impactful promotion packages that
accurately represent an engineer's achievements.`

const promotionUserPrompt = `Create a promotion package for {name} from {current_level} to {target_level}.

CONTEXT:
- Engineer: {name}
- Current Level: {current_level}
- Target Level: {target_level}
- Discipline: {discipline}

EVIDENCE SOURCES:
- Project Contributions: {project_contributions}
- Manager Notes: {manager_notes}
- Performance Reviews: {performance_reviews}
- Peer Feedback: {peer_feedback}
- Self Assessment: {self_assessment}

COMPETENCY REQUIREMENTS:
{competency_analysis}

YOUR TASK:
1. Create executive summary highlighting key achievements
2. Document specific accomplishments with evidence
3. Map contributions to target-level competencies
4. Include stakeholder feedback
5. Identify growth areas and recommendations

OUTPUT FORMAT:
Professional promotion package with:
- Executive summary
- Key accomplishments
- Competency evidence
- Project contributions
- Stakeholder feedback
- Growth areas
- Recommendations

Use professional, impactful language. Be honest and evidence-based. Never exaggerate.`

// renderPrompt substitutes {key} placeholders. Unknown placeholders are left
// in place so a missing variable is visible rather than silently blank.
func renderPrompt(tmpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
