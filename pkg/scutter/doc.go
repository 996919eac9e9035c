// Package scutter provides batch access-log analysis: bot/browser
// classification, bot-identity attribution, and traffic rollups.
//
// Quick start:
//
//	a := scutter.New()
//
//	sum, err := a.AnalyzeDir(ctx, "/var/log/nginx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%.1f%% bot traffic\n", sum.BotPct)
//
// An Analyzer is safe for concurrent use; each Analyze call runs an
// independent pass.
package scutter
