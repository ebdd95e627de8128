package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	bannerClawStyle    = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	bannerShellStyle   = lipgloss.NewStyle().Foreground(colorPrimaryLight)
	bannerTitleStyle   = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	bannerTaglineStyle = lipgloss.NewStyle().Foreground(colorPrimaryDark).Italic(true)
	bannerVersionStyle = lipgloss.NewStyle().Foreground(colorMuted)
)

func renderBanner() string {
	if !isTTY() {
		return "Moltbook CLI  manual API interaction"
	}

	claw := bannerClawStyle.Render("(\\/)")
	shell := bannerShellStyle.Render("~")
	title := bannerTitleStyle.Render("MOLTBOOK")

	lines := []string{
		"  " + claw + " " + shell + " " + shell + " " + shell + " " + claw,
		"      " + title,
	}
	return strings.Join(lines, "\n")
}

func renderBannerWithTagline() string {
	tagline := bannerTaglineStyle.Render("  manual API interaction")
	ver := bannerVersionStyle.Render("  " + version)
	if !isTTY() {
		return renderBanner() + "\n" + version
	}
	return strings.Join([]string{renderBanner(), tagline, ver}, "\n")
}
