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


package mock

import "github.com/poiesic/stratum/ai"

// MockProvider is a test double for ai.Provider.
type MockProvider struct {
	deriver *MockDeriver
}

// NewMockProvider creates a new mock provider with a default mock deriver.
//
// Returns ai.Provider interface for consistency with production constructors.
// Use GetMockDeriver() to access the concrete type for test assertions.
func NewMockProvider() ai.Provider {
	return &MockProvider{deriver: NewMockDeriver()}
}

// NewMockProviderWithDeriver creates a mock provider around a custom mock deriver.
func NewMockProviderWithDeriver(deriver *MockDeriver) ai.Provider {
	return &MockProvider{deriver: deriver}
}

// Deriver returns the mock deriver.
func (p *MockProvider) Deriver() ai.Deriver {
	return p.deriver
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockDeriver returns the underlying mock deriver for test assertions.
func (p *MockProvider) GetMockDeriver() *MockDeriver {
	return p.deriver
}
