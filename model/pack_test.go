package model_test

import (
	"testing"

	"packvault/model"
)

func TestJoinTagsNormalizes(t *testing.T) {
	got := model.JoinTags([]string{" deep ", "house", "", "deep", "lofi "})
	if got != "deep,house,lofi" {
		t.Fatalf("JoinTags = %q", got)
	}
}

func TestTagListRoundTrip(t *testing.T) {
	p := &model.Pack{Tags: "deep, house ,,lofi"}
	got := p.TagList()
	want := []string{"deep", "house", "lofi"}
	if len(got) != len(want) {
		t.Fatalf("TagList = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("TagList = %v, want %v", got, want)
		}
	}
}

func TestEmptyTagList(t *testing.T) {
	p := &model.Pack{}
	if got := p.TagList(); got != nil {
		t.Fatalf("TagList on empty tags = %v, want nil", got)
	}
}

func TestStatusValidity(t *testing.T) {
	for _, s := range []model.PackStatus{model.PackDraft, model.PackPublished, model.PackDisabled} {
		if !s.Valid() {
			t.Fatalf("%q should be valid", s)
		}
	}
	if model.PackStatus("archived").Valid() {
		t.Fatal("unknown pack status accepted")
	}
	for _, s := range []model.SampleStatus{model.SampleActive, model.SampleDisabled, model.SampleDeleted} {
		if !s.Valid() {
			t.Fatalf("%q should be valid", s)
		}
	}
	if model.SampleType("midi").Valid() {
		t.Fatal("unknown sample type accepted")
	}
}
