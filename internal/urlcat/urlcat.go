// Package urlcat assigns a hierarchical (category, subcategory, detail)
// label to a request URL. Aimed at MediaWiki/Wikibase-style sites: special
// pages, entity and property namespaces, user/talk pages, static assets.
// Every input lands in a defined bucket; there is no failure case.
package urlcat

import (
	"net/url"
	"strings"

	"github.com/graylag/scutter/internal/model"
)

// Categorize labels one raw path+query string. The input is decoded only
// for inspection; callers keep the raw URL untouched.
func Categorize(raw string) model.CategoryLabel {
	u, err := url.Parse(raw)
	if err != nil {
		return model.CategoryLabel{Category: "Other", Subcategory: "Uncategorized", Detail: raw}
	}
	path := u.Path

	switch {
	case path == "/w/index.php":
		return categorizeIndexPHP(u, raw)
	case strings.HasPrefix(path, "/wiki/"):
		return categorizeWikiPath(strings.TrimPrefix(path, "/wiki/"))
	case strings.HasPrefix(path, "/entity/"):
		return model.CategoryLabel{Category: "Entity redirect", Subcategory: "Linked data", Detail: strings.TrimPrefix(path, "/entity/")}
	case path == "/":
		return model.CategoryLabel{Category: "Homepage", Subcategory: "Root", Detail: "/"}
	case strings.HasPrefix(path, "/static/") || strings.HasPrefix(path, "/resources/"):
		return model.CategoryLabel{Category: "Static resources", Subcategory: "Assets", Detail: path}
	default:
		return model.CategoryLabel{Category: "Other", Subcategory: "Uncategorized", Detail: path}
	}
}

// categorizeIndexPHP routes /w/index.php requests by their title parameter.
func categorizeIndexPHP(u *url.URL, raw string) model.CategoryLabel {
	title := u.Query().Get("title")

	switch {
	case strings.HasPrefix(title, "Special:WhatLinksHere"):
		target := strings.TrimPrefix(title, "Special:WhatLinksHere/")
		switch {
		case strings.HasPrefix(target, "Item:Q"):
			return model.CategoryLabel{Category: "Special:WhatLinksHere", Subcategory: "Item pages", Detail: target}
		case strings.HasPrefix(target, "Property:P"):
			return model.CategoryLabel{Category: "Special:WhatLinksHere", Subcategory: "Property pages", Detail: target}
		default:
			return model.CategoryLabel{Category: "Special:WhatLinksHere", Subcategory: "Other", Detail: target}
		}
	case strings.HasPrefix(title, "Special:Log"):
		return model.CategoryLabel{Category: "Special:Log", Subcategory: "Log pages", Detail: title}
	case strings.HasPrefix(title, "Special:UserLogin"):
		return model.CategoryLabel{Category: "Special:UserLogin", Subcategory: "Login attempts", Detail: title}
	case strings.HasPrefix(title, "Special:Search"):
		return model.CategoryLabel{Category: "Special:Search", Subcategory: "Search queries", Detail: title}
	case strings.HasPrefix(title, "Special:"):
		specialType, _, _ := strings.Cut(title, "/")
		return model.CategoryLabel{Category: specialType, Subcategory: "Other special", Detail: title}
	case strings.HasPrefix(title, "Item:Q"):
		return model.CategoryLabel{Category: "Item pages", Subcategory: "Direct item access", Detail: title}
	case strings.HasPrefix(title, "Property:P"):
		return model.CategoryLabel{Category: "Property pages", Subcategory: "Direct property access", Detail: title}
	case strings.HasPrefix(title, "User:") || strings.HasPrefix(title, "User_talk:"):
		return model.CategoryLabel{Category: "User pages", Subcategory: "User/talk pages", Detail: title}
	case title != "":
		return model.CategoryLabel{Category: "Other wiki pages", Subcategory: "Via index.php", Detail: title}
	default:
		return model.CategoryLabel{Category: "Unknown", Subcategory: "No title param", Detail: raw}
	}
}

// categorizeWikiPath routes decoded /wiki/<page> paths.
func categorizeWikiPath(page string) model.CategoryLabel {
	switch {
	case strings.HasPrefix(page, "Special:EntityData/"):
		entity := strings.TrimPrefix(page, "Special:EntityData/")
		if i := strings.LastIndex(entity, "."); i >= 0 {
			return model.CategoryLabel{
				Category:    "Special:EntityData",
				Subcategory: "Format: " + entity[i+1:],
				Detail:      entity[:i],
			}
		}
		return model.CategoryLabel{Category: "Special:EntityData", Subcategory: "Default format", Detail: entity}
	case strings.HasPrefix(page, "Special:WhatLinksHere"):
		return model.CategoryLabel{Category: "Special:WhatLinksHere", Subcategory: "Direct access", Detail: page}
	case strings.HasPrefix(page, "Special:NewItem"):
		return model.CategoryLabel{Category: "Special:NewItem", Subcategory: "New item creation", Detail: page}
	case strings.HasPrefix(page, "Special:RecentChangesLinked"):
		return model.CategoryLabel{Category: "Special:RecentChangesLinked", Subcategory: "Related changes", Detail: page}
	case strings.HasPrefix(page, "Special:"):
		specialType, _, _ := strings.Cut(page, "/")
		return model.CategoryLabel{Category: specialType, Subcategory: "Wiki path", Detail: page}
	case strings.HasPrefix(page, "Item:Q"):
		return model.CategoryLabel{Category: "Item pages", Subcategory: "Wiki path", Detail: page}
	case strings.HasPrefix(page, "Item_talk:Q"):
		return model.CategoryLabel{Category: "Item talk pages", Subcategory: "Discussion", Detail: page}
	case strings.HasPrefix(page, "Property:P"):
		return model.CategoryLabel{Category: "Property pages", Subcategory: "Wiki path", Detail: page}
	case strings.HasPrefix(page, "Property_talk:P"):
		return model.CategoryLabel{Category: "Property talk pages", Subcategory: "Discussion", Detail: page}
	case strings.HasPrefix(page, "User:"):
		return model.CategoryLabel{Category: "User pages", Subcategory: "User page", Detail: page}
	case strings.HasPrefix(page, "User_talk:"):
		return model.CategoryLabel{Category: "User pages", Subcategory: "User talk", Detail: page}
	case strings.HasPrefix(page, "Project:"):
		return model.CategoryLabel{Category: "Project pages", Subcategory: "Project namespace", Detail: page}
	case strings.HasPrefix(page, "MediaWiki"):
		return model.CategoryLabel{Category: "MediaWiki pages", Subcategory: "System messages", Detail: page}
	default:
		return model.CategoryLabel{Category: "Other wiki pages", Subcategory: "Wiki path", Detail: page}
	}
}
