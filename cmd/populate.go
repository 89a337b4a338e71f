package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mimir-ai/mimir/internal/app"
)

var populateCmd = &cobra.Command{
	Use:   "populate",
	Short: "Populate the system with sample data for testing",
	RunE:  runPopulate,
}

func init() {
	rootCmd.AddCommand(populateCmd)
}

// Sample business records for the data mart, one per record type.
var sampleDataMart = []struct {
	dataType string
	record   map[string]any
}{
	{
		dataType: "business_metrics",
		record: map[string]any{
			"revenue_metrics": map[string]any{
				"gaming_revenue":                  15000000.0,
				"average_revenue_per_paying_user": 125.0,
				"conversion_to_premium":           0.08,
				"in_game_purchases_rate":          0.25,
			},
			"user_engagement": map[string]any{
				"daily_active_players":     750000,
				"average_session_duration": 45.2,
				"games_per_session":        3.8,
				"completion_rate":          0.67,
			},
			"performance_kpis": map[string]any{
				"player_retention_rate":    0.82,
				"tournament_participation": 0.43,
				"social_features_usage":    0.52,
			},
		},
	},
	{
		dataType: "user_analytics",
		record: map[string]any{
			"user_demographics": map[string]any{
				"age_distribution":        map[string]any{"18-25": 0.25, "26-35": 0.40, "36-45": 0.20, "46+": 0.15},
				"geographic_distribution": map[string]any{"NA": 0.45, "EU": 0.30, "APAC": 0.20, "Other": 0.05},
				"device_usage":            map[string]any{"mobile": 0.65, "desktop": 0.30, "tablet": 0.05},
			},
			"behavior_patterns": []any{
				"Peak usage hours: 7-9 PM",
				"Weekend engagement 30% higher than weekdays",
				"Mobile users have shorter but more frequent sessions",
			},
		},
	},
	{
		dataType: "gaming_data",
		record: map[string]any{
			"strategic_overview": map[string]any{
				"total_gaming_revenue":  15000000,
				"market_share":          0.15,
				"year_over_year_growth": 0.28,
				"profit_margin":         0.22,
			},
			"game_catalog": map[string]any{
				"total_games":             1250,
				"active_games":            890,
				"new_releases_this_month": 15,
				"top_categories":          []any{"Strategy", "Action", "Puzzle", "RPG"},
			},
		},
	},
}

// Sample role-specific guidance per role.
var sampleRoleContent = map[string]string{
	"Analyst-Gaming": `Gaming Analytics Best Practices:
1. Track player engagement metrics including session duration, retention rates, and in-game purchases
2. Analyze player behavior patterns to identify opportunities for game improvement
3. Monitor competitive landscape and market trends
4. Use cohort analysis to understand player lifecycle
5. Implement A/B testing for game features and monetization strategies`,
	"Analyst-Non-Gaming": `General Analytics Guidelines:
1. Focus on user acquisition cost and lifetime value metrics
2. Analyze conversion funnels and identify optimization opportunities
3. Track customer satisfaction and Net Promoter Score
4. Monitor market trends and competitive positioning
5. Use predictive analytics for forecasting and planning`,
	"Leadership-Gaming": `Gaming Strategy Leadership Framework:
1. Define long-term vision for gaming portfolio
2. Assess market opportunities and competitive threats
3. Make strategic decisions on game development investments
4. Build partnerships with gaming studios and publishers
5. Oversee portfolio performance and resource allocation`,
	"Leadership-Non-Gaming": `Strategic Leadership Principles:
1. Develop comprehensive business strategy and vision
2. Lead organizational transformation initiatives
3. Build strong stakeholder relationships
4. Drive innovation and digital transformation
5. Ensure sustainable growth and profitability`,
}

const sampleCommonKnowledge = `Mimir AI Assistant User Guide:

Mimir is an advanced AI assistant designed to help with business analysis, gaming insights, and strategic decision-making.

Key Features:
- Multi-source data integration
- Role-based content filtering
- Conversation history tracking
- Real-time business metrics access

Best Practices:
1. Be specific in your questions to get more targeted responses
2. Use role-specific terminology for better context understanding
3. Reference previous conversations for continuity
4. Ask for data visualization when dealing with metrics
5. Request comparisons between different time periods or segments`

func runPopulate(cmd *cobra.Command, _ []string) error {
	return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
		total := 0

		for _, sample := range sampleDataMart {
			n, err := a.Engine.AddDataMartRecord(ctx, sample.record, sample.dataType)
			if err != nil {
				return fmt.Errorf("adding %s sample: %w", sample.dataType, err)
			}
			total += n
		}

		for role, content := range sampleRoleContent {
			n, err := a.Engine.AddRoleContent(ctx, role, "sample_data", content)
			if err != nil {
				return fmt.Errorf("adding role content for %s: %w", role, err)
			}
			total += n
		}

		n, err := a.Engine.AddKnowledge(ctx, "user_guide", sampleCommonKnowledge)
		if err != nil {
			return fmt.Errorf("adding common knowledge sample: %w", err)
		}
		total += n

		fmt.Printf("Populated sample data: %d chunks across data mart, %d roles, and the knowledge base\n",
			total, len(sampleRoleContent))
		return nil
	})
}
