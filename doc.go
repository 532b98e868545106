// Package renderdoc implements the render orchestration engine for a
// document render service: it expands a Handlebars-style HTML template
// against branding and variable data, then turns the result into a PDF
// using a bounded pool of headless-browser instances.
//
// # Quick start
//
// Build a pool, a pipeline, and run a request:
//
//	pool, err := renderdoc.NewBrowserPool(renderdoc.PoolOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Shutdown()
//
//	pipeline := renderdoc.NewPipeline(pool)
//
//	result, err := pipeline.Execute(ctx, renderdoc.RenderRequest{
//	    Template: renderdoc.DocumentTemplate{
//	        DocumentType: "invoice",
//	        Template:     renderdoc.TemplateContent{HTML: "<p>{{variables.name}}</p>"},
//	        Variables:    renderdoc.NewVariantMap(map[string]any{"name": "Alice"}),
//	    },
//	})
//
// # Dispatch modes
//
// [QueueDispatcher] pulls correlated render requests off a [Queue]
// transport, runs them through a [Pipeline] with bounded concurrency,
// and replies with retry and dead-lettering on failure.
// [FileDispatcher] walks a directory of request JSON files and renders
// each one to a PDF in the configured output directory, for local/batch
// use without a queue.
//
// # Browser requirements
//
// PDF generation requires Chrome/Chromium. The go-rod library
// automatically downloads a managed Chromium instance on first run
// (~/.cache/rod/browser/). Set ROD_NO_SANDBOX=1 in containers and CI to
// disable the Chrome sandbox, and ROD_BROWSER_BIN to use a specific
// Chrome binary.
package renderdoc
