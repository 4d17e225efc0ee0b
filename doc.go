// Package helio provides a Go client for helio streaming search sessions.
//
// A session sends one query at a time to the streaming search endpoint and
// folds the event stream into snapshots and a single terminal outcome.
// Sending again supersedes the in-flight session; superseded sessions never
// reach the observers.
//
//	client, _ := helio.New(ctx,
//	    helio.WithBaseURL("https://api.example.com"),
//	    helio.WithAPIKey(os.Getenv("HELIO_API_KEY")),
//	)
//	defer client.Close()
//
//	sess := client.NewSession(helio.SessionObservers{
//	    OnSnapshot: func(s helio.Snapshot) { render(s) },
//	    OnOutcome:  func(o helio.Outcome) { done(o) },
//	})
//	sess.Send(ctx, helio.SearchRequest{Query: "what is the pricing"})
package helio
