// Package llm hides the language model used by the explain command behind
// one interface.
//
// Provider implementations live in subpackages. To avoid import cycles the
// subpackages (like ollama) define their own message types, and this
// package adapts them to Provider.
//
// # Usage
//
//	provider, err := llm.NewProvider(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	if err := provider.Heartbeat(ctx); err != nil {
//	    return err // errors.Is(err, llm.ErrProviderUnavailable)
//	}
//
//	stream, err := provider.ChatStream(ctx, []llm.Message{
//	    {Role: "system", Content: prompt.SystemPrompt},
//	    {Role: "user", Content: userPrompt},
//	}, &llm.ChatOptions{Temperature: 0})
//	if err != nil {
//	    return err
//	}
//	text, err := llm.Collect(stream, func(chunk string) { fmt.Print(chunk) })
//
// # Configuration
//
//	llm:
//	  provider: ollama
//	  temperature: 0
//	  token_limit: 4000
//	  ollama:
//	    host: http://localhost:11434
//	    model: llama3.2
//	    keep_alive: 5m
//	    num_ctx: 8192
//
// OLLAMA_HOST is honoured when llm.ollama.host is empty.
package llm
