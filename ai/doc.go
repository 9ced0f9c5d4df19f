// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai provides the enrichment abstractions used by the gold stage.
//
// A Deriver turns one normalized record into an Annotation, a JSON object
// stored verbatim in the enrichment layer. A Provider owns a Deriver and
// its resources.
//
// # Implementation Packages
//
//   - ai/openai: langchaingo-backed deriver for OpenAI-compatible chat APIs
//   - ai/mock: deterministic placeholder deriver, also used as a test double
//
// Public constructors return interfaces (openai.NewProvider returns
// ai.Provider). Mock constructors return concrete types so tests can
// inspect call counts and inject behavior.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithHost("http://localhost:11434"), ai.WithModel("qwen2.5:3b"))
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	annotation, err := provider.Deriver().Derive(ctx, record)
package ai
