// Copyright 2026 EngFlow Inc. All rights reserved.
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

package value

import "strconv"

// fmtFloatShortest renders f using Go's shortest round-tripping decimal
// representation, pinning the spec's open question on default float
// formatting (spec.md §9(c)).
func fmtFloatShortest(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
