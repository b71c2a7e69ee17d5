// Package annotation recognizes documentation annotations embedded in source files.
//
// An annotation is a block comment whose first non-blank token is one of the kind
// tags #name, #step, #desc or #conf:
//
//	/*
//	    #step
//	    Matching Step: match closest points
//
//	    Sources:
//	    https://arxiv.org/pdf/2206.06435.pdf
//	*/
//
// Scan finds the blocks of a file in source order, Parse splits a block body into
// rendered content and cited URLs, ParseConf reads the `"key" description` shape of
// #conf blocks and Locator finds the registered method identifier of a file.
package annotation
