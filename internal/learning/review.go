// Copyright 2025 ByteDance Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package learning

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/cloudwego/gencoder/internal/console"
)

// Review is the human verdict on a run. Nil booleans mean "unsure" or
// "not asked".
type Review struct {
	Ran      *bool  `json:"ran"`
	Perfect  *bool  `json:"perfect"`
	Works    *bool  `json:"works"`
	Comments string `json:"comments"`
	Raw      string `json:"raw"`
}

func (r *Review) JSON() (string, error) {
	bs, err := json.Marshal(r)
	return string(bs), err
}

func ParseReview(s string) (*Review, error) {
	var r Review
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

const invalidChoice = "Invalid input. Please enter y, n, or u: "

func termChoices() string {
	return console.Green("y") + "/" + console.Red("n") + "/" + console.Yellow("u") + "(ncertain): "
}

// HumanInput asks whether the code ran, was perfect and was useful, each
// question re-asked until y, n or u is given, and collects free comments.
func HumanInput(c console.Console) (*Review, error) {
	c.Println()
	c.Println(console.LightGreen("To help gencoder learn, please answer 3 questions:"))
	c.Println()

	ran, err := console.Ask(c, "Did the generated code run at all? "+termChoices(), invalidChoice, "y", "n", "u")
	if err != nil {
		return nil, err
	}

	var perfect, useful string
	if ran == "y" {
		perfect, err = console.Ask(c, "Did the generated code do everything you wanted? "+termChoices(), invalidChoice, "y", "n", "u")
		if err != nil {
			return nil, err
		}
		if perfect != "y" {
			useful, err = console.Ask(c, "Did the generated code do anything useful? "+termChoices(), invalidChoice, "y", "n", "u")
			if err != nil {
				return nil, err
			}
		}
	}

	var comments string
	if perfect != "y" {
		comments, err = c.ReadLine("If you have time, please explain what was not working " + console.LightGreen("(ok to leave blank)") + "\n")
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	}
	c.Println(console.LightGreen("Thank you"))

	return &Review{
		Raw:      strings.Join([]string{ran, perfect, useful}, ", "),
		Ran:      triState(ran),
		Perfect:  triState(perfect),
		Works:    triState(useful),
		Comments: comments,
	}, nil
}

func triState(answer string) *bool {
	var b bool
	switch answer {
	case "y":
		b = true
	case "n":
		b = false
	default:
		return nil
	}
	return &b
}
