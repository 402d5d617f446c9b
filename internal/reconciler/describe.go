package reconciler

import (
	"fmt"
	"strconv"

	"github.com/cypherlabdev/value-bet-service/internal/models"
)

func formatLine(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v > 0 {
		return "+" + s
	}
	return s
}

func moneylineDescription(team, event string) string {
	return fmt.Sprintf("%s Moneyline %s", team, event)
}

func drawDescription(event string) string {
	return "Draw " + event
}

func handicapDescription(team string, line float64, event string) string {
	return fmt.Sprintf("%s %s Handicap %s", team, formatLine(line), event)
}

func totalDescription(side models.Side, threshold float64, event string) string {
	label := "Over"
	if side == models.SideUnder {
		label = "Under"
	}
	return fmt.Sprintf("%s %s Total Points %s", label, strconv.FormatFloat(threshold, 'f', -1, 64), event)
}

func propDescription(player string, category models.StatCategory, count int, event string) string {
	if count > 0 {
		return fmt.Sprintf("%s %d+ %s %s", player, count, category.PrettyName(), event)
	}
	return fmt.Sprintf("%s %s %s", player, category.PrettyName(), event)
}
