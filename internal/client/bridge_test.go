package client

import "testing"

func TestParseCallbackURL_Token(t *testing.T) {
	result := ParseCallbackURL("unihouse://oauth?token=abc123&provider=google")

	if result.Kind != ResultSuccess {
		t.Fatalf("kind = %v, want success", result.Kind)
	}
	if result.Token != "abc123" {
		t.Errorf("token = %q, want %q", result.Token, "abc123")
	}
	if result.Code != "" {
		t.Errorf("code = %q, want empty", result.Code)
	}
}

func TestParseCallbackURL_Code(t *testing.T) {
	result := ParseCallbackURL("unihouse://oauth?code=auth-code-xyz")

	if result.Kind != ResultSuccess {
		t.Fatalf("kind = %v, want success", result.Kind)
	}
	if result.Code != "auth-code-xyz" {
		t.Errorf("code = %q, want %q", result.Code, "auth-code-xyz")
	}
}

func TestParseCallbackURL_ArrayValuedToken_FirstElementWins(t *testing.T) {
	result := ParseCallbackURL("unihouse://oauth?token=first&token=second")

	if result.Kind != ResultSuccess {
		t.Fatalf("kind = %v, want success", result.Kind)
	}
	if result.Token != "first" {
		t.Errorf("token = %q, want %q (first element)", result.Token, "first")
	}
}

func TestParseCallbackURL_ErrorParam_IsFailure(t *testing.T) {
	result := ParseCallbackURL("unihouse://oauth?error=access_denied")

	if result.Kind != ResultFailed {
		t.Fatalf("kind = %v, want failed", result.Kind)
	}
	if result.Reason != "access_denied" {
		t.Errorf("reason = %q, want %q", result.Reason, "access_denied")
	}
}

func TestParseCallbackURL_MissingCredential_IsFailure(t *testing.T) {
	result := ParseCallbackURL("unihouse://oauth?provider=google")

	if result.Kind != ResultFailed {
		t.Fatalf("kind = %v, want failed", result.Kind)
	}
}

func TestExtractWebToken_RemovesTokenFromURL(t *testing.T) {
	token, rewritten, ok := ExtractWebToken("http://localhost:8081/?token=web-token&tab=home")

	if !ok {
		t.Fatal("expected ok")
	}
	if token != "web-token" {
		t.Errorf("token = %q, want %q", token, "web-token")
	}
	// リロード時にトークンが再送されないこと
	if containsSub(rewritten, "token=") {
		t.Errorf("rewritten = %q, should not carry token", rewritten)
	}
	// 他のパラメータは保持されること
	if !containsSub(rewritten, "tab=home") {
		t.Errorf("rewritten = %q, should keep other params", rewritten)
	}
}

func TestExtractWebToken_NoToken_ReturnsOriginal(t *testing.T) {
	original := "http://localhost:8081/?tab=home"
	token, rewritten, ok := ExtractWebToken(original)

	if ok {
		t.Fatal("expected ok=false")
	}
	if token != "" {
		t.Errorf("token = %q, want empty", token)
	}
	if rewritten != original {
		t.Errorf("rewritten = %q, want unchanged %q", rewritten, original)
	}
}

// containsSub は文字列sにsubstrが含まれるかチェックするヘルパー。
func containsSub(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
