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


// Package checksum computes row fingerprints and upload file checksums.
//
// A row fingerprint is the hex digest of a payload's key-sorted canonical
// JSON form. It is the global deduplication key of the raw layer, so two rows
// with the same key/value content fingerprint identically regardless of
// their source column order.
//
// File checksums use xxhash64 and are informational only.
package checksum
