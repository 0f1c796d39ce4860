package config

import (
	"github.com/AlecAivazis/survey/v2"
)

const tokenPromptMessage = "Please enter your OpenAI API token from https://platform.openai.com/account/api-keys"

// TokenPrompter asks the user for an API token
type TokenPrompter interface {
	PromptToken(message string) (string, error)
}

// SurveyPrompter reads the token with a hidden terminal prompt
type SurveyPrompter struct{}

// PromptToken implements TokenPrompter
func (SurveyPrompter) PromptToken(message string) (string, error) {
	var token string
	prompt := &survey.Password{Message: message}
	if err := survey.AskOne(prompt, &token, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return token, nil
}
