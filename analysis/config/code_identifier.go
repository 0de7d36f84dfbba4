// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package config

import (
	"fmt"
	"regexp"
)

// A CodeIdentifier identifies a method that is a source, sink, etc..
// A code identifier can be identified from its package, type (class), method name and signature descriptor, or any
// combination of those. Empty fields match anything. Non-empty fields are regexes if they can be compiled to
// regexes, otherwise they must be equal.
type CodeIdentifier struct {
	Package   string `yaml:"package,omitempty"`
	Type      string `yaml:"type,omitempty"`
	Method    string `yaml:"method,omitempty"`
	Signature string `yaml:"signature,omitempty"`
	// This will not be part of the yaml config
	computedRegexs *codeIdentifierRegex
}

type codeIdentifierRegex struct {
	packageRegex   *regexp.Regexp
	typeRegex      *regexp.Regexp
	methodRegex    *regexp.Regexp
	signatureRegex *regexp.Regexp
}

func (cid CodeIdentifier) String() string {
	return fmt.Sprintf("{package: %q, type: %q, method: %q, signature: %q}",
		cid.Package, cid.Type, cid.Method, cid.Signature)
}

// CompileRegexes compiles the strings in the code identifier into regexes. It compiles all identifiers into regexes
// or none.
func CompileRegexes(cid CodeIdentifier) CodeIdentifier {
	packageRegex, err := regexp.Compile(cid.Package)
	if err != nil {
		return cid
	}
	typeRegex, err := regexp.Compile(cid.Type)
	if err != nil {
		return cid
	}
	methodRegex, err := regexp.Compile(cid.Method)
	if err != nil {
		return cid
	}
	signatureRegex, err := regexp.Compile(cid.Signature)
	if err != nil {
		return cid
	}
	cid.computedRegexs = &codeIdentifierRegex{
		packageRegex,
		typeRegex,
		methodRegex,
		signatureRegex,
	}
	return cid
}

// Matches returns true if cid matches the concrete identifier of a method: each non-empty field of cid matches
// the corresponding field of the method.
func (cid CodeIdentifier) Matches(method CodeIdentifier) bool {
	return method.equalOnNonEmptyFields(cid)
}

// equalOnNonEmptyFields returns true if each of the receiver's fields are either equal to the corresponding
// argument's field, or the argument's field is empty
func (cid *CodeIdentifier) equalOnNonEmptyFields(cidRef CodeIdentifier) bool {
	if cidRef.computedRegexs != nil {
		return ((cidRef.computedRegexs.packageRegex.MatchString(cid.Package)) || (cidRef.Package == "")) &&
			((cidRef.computedRegexs.typeRegex.MatchString(cid.Type)) || (cidRef.Type == "")) &&
			((cidRef.computedRegexs.methodRegex.MatchString(cid.Method)) || (cidRef.Method == "")) &&
			((cidRef.computedRegexs.signatureRegex.MatchString(cid.Signature)) || (cidRef.Signature == ""))
	} else {
		return ((cid.Package == cidRef.Package) || (cidRef.Package == "")) &&
			((cid.Type == cidRef.Type) || (cidRef.Type == "")) &&
			((cid.Method == cidRef.Method) || (cidRef.Method == "")) &&
			((cid.Signature == cidRef.Signature) || (cidRef.Signature == ""))
	}
}
