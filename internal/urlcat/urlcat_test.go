package urlcat

import (
	"testing"

	"github.com/graylag/scutter/internal/model"
)

func TestCategorize(t *testing.T) {
	cases := []struct {
		url  string
		want model.CategoryLabel
	}{
		{"/", model.CategoryLabel{Category: "Homepage", Subcategory: "Root", Detail: "/"}},
		{"/static/logo.png", model.CategoryLabel{Category: "Static resources", Subcategory: "Assets", Detail: "/static/logo.png"}},
		{"/resources/lib/jquery.js", model.CategoryLabel{Category: "Static resources", Subcategory: "Assets", Detail: "/resources/lib/jquery.js"}},
		{"/entity/Q42", model.CategoryLabel{Category: "Entity redirect", Subcategory: "Linked data", Detail: "Q42"}},
		{"/wiki/Item:Q42", model.CategoryLabel{Category: "Item pages", Subcategory: "Wiki path", Detail: "Item:Q42"}},
		{"/wiki/Item_talk:Q42", model.CategoryLabel{Category: "Item talk pages", Subcategory: "Discussion", Detail: "Item_talk:Q42"}},
		{"/wiki/Property:P31", model.CategoryLabel{Category: "Property pages", Subcategory: "Wiki path", Detail: "Property:P31"}},
		{"/wiki/Property_talk:P31", model.CategoryLabel{Category: "Property talk pages", Subcategory: "Discussion", Detail: "Property_talk:P31"}},
		{"/wiki/Special:EntityData/Q42.json", model.CategoryLabel{Category: "Special:EntityData", Subcategory: "Format: json", Detail: "Q42"}},
		{"/wiki/Special:EntityData/Q42", model.CategoryLabel{Category: "Special:EntityData", Subcategory: "Default format", Detail: "Q42"}},
		{"/wiki/Special:WhatLinksHere/Item:Q1", model.CategoryLabel{Category: "Special:WhatLinksHere", Subcategory: "Direct access", Detail: "Special:WhatLinksHere/Item:Q1"}},
		{"/wiki/Special:NewItem", model.CategoryLabel{Category: "Special:NewItem", Subcategory: "New item creation", Detail: "Special:NewItem"}},
		{"/wiki/Special:RecentChangesLinked/Q5", model.CategoryLabel{Category: "Special:RecentChangesLinked", Subcategory: "Related changes", Detail: "Special:RecentChangesLinked/Q5"}},
		{"/wiki/Special:Version", model.CategoryLabel{Category: "Special:Version", Subcategory: "Wiki path", Detail: "Special:Version"}},
		{"/wiki/User:Alice", model.CategoryLabel{Category: "User pages", Subcategory: "User page", Detail: "User:Alice"}},
		{"/wiki/User_talk:Alice", model.CategoryLabel{Category: "User pages", Subcategory: "User talk", Detail: "User_talk:Alice"}},
		{"/wiki/Project:About", model.CategoryLabel{Category: "Project pages", Subcategory: "Project namespace", Detail: "Project:About"}},
		{"/wiki/MediaWiki:Sidebar", model.CategoryLabel{Category: "MediaWiki pages", Subcategory: "System messages", Detail: "MediaWiki:Sidebar"}},
		{"/wiki/Main_Page", model.CategoryLabel{Category: "Other wiki pages", Subcategory: "Wiki path", Detail: "Main_Page"}},
		{"/robots.txt", model.CategoryLabel{Category: "Other", Subcategory: "Uncategorized", Detail: "/robots.txt"}},

		{"/w/index.php?title=Special:WhatLinksHere/Item:Q42", model.CategoryLabel{Category: "Special:WhatLinksHere", Subcategory: "Item pages", Detail: "Item:Q42"}},
		{"/w/index.php?title=Special:WhatLinksHere/Property:P18", model.CategoryLabel{Category: "Special:WhatLinksHere", Subcategory: "Property pages", Detail: "Property:P18"}},
		{"/w/index.php?title=Special:WhatLinksHere/Help:Contents", model.CategoryLabel{Category: "Special:WhatLinksHere", Subcategory: "Other", Detail: "Help:Contents"}},
		{"/w/index.php?title=Special:Log/delete", model.CategoryLabel{Category: "Special:Log", Subcategory: "Log pages", Detail: "Special:Log/delete"}},
		{"/w/index.php?title=Special:UserLogin&returnto=Main", model.CategoryLabel{Category: "Special:UserLogin", Subcategory: "Login attempts", Detail: "Special:UserLogin"}},
		{"/w/index.php?title=Special:Search&search=cat", model.CategoryLabel{Category: "Special:Search", Subcategory: "Search queries", Detail: "Special:Search"}},
		{"/w/index.php?title=Special:RecentChanges/sub", model.CategoryLabel{Category: "Special:RecentChanges", Subcategory: "Other special", Detail: "Special:RecentChanges/sub"}},
		{"/w/index.php?title=Item:Q7&action=history", model.CategoryLabel{Category: "Item pages", Subcategory: "Direct item access", Detail: "Item:Q7"}},
		{"/w/index.php?title=Property:P1", model.CategoryLabel{Category: "Property pages", Subcategory: "Direct property access", Detail: "Property:P1"}},
		{"/w/index.php?title=User:Bob", model.CategoryLabel{Category: "User pages", Subcategory: "User/talk pages", Detail: "User:Bob"}},
		{"/w/index.php?title=Help:Editing", model.CategoryLabel{Category: "Other wiki pages", Subcategory: "Via index.php", Detail: "Help:Editing"}},
		{"/w/index.php?action=raw", model.CategoryLabel{Category: "Unknown", Subcategory: "No title param", Detail: "/w/index.php?action=raw"}},
	}
	for _, tc := range cases {
		got := Categorize(tc.url)
		if got != tc.want {
			t.Fatalf("Categorize(%q) = %+v, want %+v", tc.url, got, tc.want)
		}
	}
}

func TestCategorizePercentEncoding(t *testing.T) {
	// Inspection decodes; the raw URL itself is never mutated by callers.
	got := Categorize("/w/index.php?title=Special%3AWhatLinksHere%2FItem%3AQ99")
	want := model.CategoryLabel{Category: "Special:WhatLinksHere", Subcategory: "Item pages", Detail: "Item:Q99"}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	got = Categorize("/wiki/Item%3AQ5")
	want = model.CategoryLabel{Category: "Item pages", Subcategory: "Wiki path", Detail: "Item:Q5"}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestCategorizeNeverEmpty(t *testing.T) {
	inputs := []string{"", "%zz", "://bad", "/w/index.php", "/wiki/"}
	for _, in := range inputs {
		got := Categorize(in)
		if got.Category == "" {
			t.Fatalf("Categorize(%q): empty category", in)
		}
	}
}
