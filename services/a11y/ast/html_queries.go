// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

// HTML Tree-sitter Node Types
//
// ERBParser masks every ERB block before handing the template to
// tree-sitter-html, so the grammar only ever sees markup. The tree is then
// flattened: tags and comments become siblings, everything between them
// becomes text or code.
//
// Reference: https://github.com/tree-sitter/tree-sitter-html
const (
	htmlNodeStartTag         = "start_tag"
	htmlNodeEndTag           = "end_tag"
	htmlNodeSelfClosing      = "self_closing_tag"
	htmlNodeErroneousEndTag  = "erroneous_end_tag"
	htmlNodeTagName          = "tag_name"
	htmlNodeErroneousTagName = "erroneous_end_tag_name"

	htmlNodeAttribute            = "attribute"
	htmlNodeAttributeName        = "attribute_name"
	htmlNodeAttributeValue       = "attribute_value"
	htmlNodeQuotedAttributeValue = "quoted_attribute_value"

	htmlNodeComment = "comment"
)

// Flattened shape
//
//	<a href="<%= url %>">Learn more</a>
//
//	document
//	├── tag      <a href="...">     children: code <%= url %>
//	├── text     Learn more
//	└── tag      </a>
//
//	<%= link_to "More", path %>
//
//	document
//	└── code     <%= link_to "More", path %>
