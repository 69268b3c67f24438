// Copyright 2025 walteh LLC
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

package text_test

import (
	"fmt"

	"github.com/walteh/lineedit/pkg/text"
)

func ExampleRange_Splice() {
	r, err := text.ParseRange("4-6")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	line := "ID:001|ACTIVE"
	fmt.Printf("Segment: %s\n", r.Segment(line))

	out, err := r.Splice(line, "999")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Spliced: %s\n", out)

	// Output:
	// Segment: 001
	// Spliced: ID:999|ACTIVE
}
