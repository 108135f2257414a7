// Copyright 2024 Google Inc. All rights reserved.
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

package term

// Namespaces of the vocabularies the builder and the loaders need.
const (
	RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	XSDNamespace = "http://www.w3.org/2001/XMLSchema#"
)

// Datatype IRIs.
const (
	XSDString        = XSDNamespace + "string"
	XSDBoolean       = XSDNamespace + "boolean"
	XSDInteger       = XSDNamespace + "integer"
	XSDLong          = XSDNamespace + "long"
	XSDInt           = XSDNamespace + "int"
	XSDShort         = XSDNamespace + "short"
	XSDByte          = XSDNamespace + "byte"
	XSDUnsignedLong  = XSDNamespace + "unsignedLong"
	XSDUnsignedInt   = XSDNamespace + "unsignedInt"
	XSDUnsignedShort = XSDNamespace + "unsignedShort"
	XSDUnsignedByte  = XSDNamespace + "unsignedByte"
	XSDDouble        = XSDNamespace + "double"
	XSDDateTime      = XSDNamespace + "dateTime"
	RDFLangString    = RDFNamespace + "langString"
)

// RDFType is the rdf:type predicate used to tag typed resources.
var RDFType = NewNamedNode(RDFNamespace + "type")
