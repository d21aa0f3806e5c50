// Copyright 2021 Andrew Werner.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package abstract

// TODO(ajwerner): It'd be amazing to find a way to make this not a single
// compile-time constant.

const (
	Degree     = 8
	MaxEntries = 2*Degree - 1
	MinEntries = Degree - 1
)

// Config is used to configure the tree. It consists of a comparison function
// for keys and any auxiliary data provided by the instantiator. It is
// passed to the augmentation's Update method.
type Config[K, Aux any] struct {
	Aux Aux
	cmp func(K, K) int
}

// Compare compares two keys using the same comparison function as the Map.
func (c *Config[K, Aux]) Compare(a, b K) int { return c.cmp(a, b) }
