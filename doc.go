// Package phantom provides a Go client for the Splunk Phantom (SOAR) REST API,
// built for scripting and testing playbooks end to end.
//
// # Features
//
//   - Service-based API: Containers, Artifacts, Vault, Playbooks, Actions
//   - A status poller that turns asynchronous playbook and action runs into
//     bounded synchronous waits
//   - Typed errors for HTTP failures and platform-level failures
//   - Functional options and an optional YAML config file
//
// # Quick Start
//
//	cfg, err := phantom.LoadConfig("phantom.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := phantom.NewClientFromConfig(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if _, err := client.Containers.Create(ctx, &phantom.CreateContainerRequest{Name: "c1", Label: "test"}); err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := client.Playbooks.Run(ctx, &phantom.RunPlaybookRequest{Playbook: "local/Create Ticket"}); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Zero ids default to whatever this client created last.
//	res, err := client.Playbooks.WaitAction(ctx, "create ticket", 0, phantom.WithMaxAttempts(30))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if res.TimedOut() {
//	    log.Fatalf("playbook still running after %d polls", res.Attempts)
//	}
//
// # Polling
//
// Every Wait method fetches a resource until its "status" is terminal
// (failed, success, new, closed, open), retrying while it is pending or
// running. Resources without a status complete on a truthy "success" or
// "count" field. Any other status fails immediately with an error matching
// ErrUnrecognizedStatus. Running out of attempts is not an error: the
// PollResult reports OutcomeTimedOut and the caller decides.
//
// # Error Handling
//
// HTTP failures are typed and can be inspected with errors.As:
//
//	_, err := client.Containers.Get(ctx, 42)
//	var notFound *phantom.NotFoundError
//	if errors.As(err, &notFound) {
//	    // Handle not found
//	}
//
// Create and run calls that succeed at the HTTP level but return no
// identifier fail with a *PlatformError; use IsKind to tell container,
// artifact, playbook and action failures apart.
package phantom
