// Copyright (c) 2015-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package prompt

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	bip39 "github.com/tyler-smith/go-bip39"
	"golang.org/x/term"
)

// promptList prompts the user with the given prefix, list of valid responses,
// and default list entry to use.  The function will repeat the prompt to the
// user until they enter a valid response.
func promptList(reader *bufio.Reader, prefix string, validResponses []string, defaultEntry string) (string, error) {
	// Setup the prompt according to the parameters.
	validStrings := strings.Join(validResponses, "/")
	var prompt string
	if defaultEntry != "" {
		prompt = fmt.Sprintf("%s (%s) [%s]: ", prefix, validStrings,
			defaultEntry)
	} else {
		prompt = fmt.Sprintf("%s (%s): ", prefix, validStrings)
	}

	// Prompt the user until one of the valid responses is given.
	for {
		fmt.Print(prompt)
		reply, err := reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		reply = strings.TrimSpace(strings.ToLower(reply))
		if reply == "" {
			reply = defaultEntry
		}

		for _, validResponse := range validResponses {
			if reply == validResponse {
				return reply, nil
			}
		}
	}
}

// promptListBool prompts the user for a boolean (yes/no) with the given
// prefix.  The function will repeat the prompt to the user until they enter a
// valid reponse.
func promptListBool(reader *bufio.Reader, prefix string, defaultEntry string) (bool, error) {
	// Setup the valid responses.
	valid := []string{"n", "no", "y", "yes"}
	response, err := promptList(reader, prefix, valid, defaultEntry)
	if err != nil {
		return false, err
	}
	return response == "yes" || response == "y", nil
}

// PassPrompt prompts the user for a passphrase with the given prefix.  The
// function will ask the user to confirm the passphrase and will repeat the
// prompts until they enter a matching response.
func PassPrompt(reader *bufio.Reader, prefix string, confirm bool) ([]byte, error) {
	// Prompt the user until they enter a passphrase.
	prompt := fmt.Sprintf("%s: ", prefix)
	for {
		fmt.Print(prompt)
		pass, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return nil, err
		}
		fmt.Print("\n")
		pass = bytes.TrimSpace(pass)
		if len(pass) == 0 {
			continue
		}

		if !confirm {
			return pass, nil
		}

		fmt.Print("Confirm passphrase: ")
		confirm, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return nil, err
		}
		fmt.Print("\n")
		confirm = bytes.TrimSpace(confirm)
		if !bytes.Equal(pass, confirm) {
			fmt.Println("The entered passphrases do not match")
			continue
		}

		return pass, nil
	}
}

// PrivatePass prompts the user for the private passphrase the seed is sealed
// under while it is held in memory.  All prompts are repeated until the user
// enters a valid response.
func PrivatePass(reader *bufio.Reader) ([]byte, error) {
	return PassPrompt(reader, "Enter the private passphrase for your keychain", true)
}

// MnemonicPassphrase prompts the user for the optional BIP-39 passphrase that
// extends the recovery seed.  An empty response selects no passphrase.
func MnemonicPassphrase(reader *bufio.Reader) ([]byte, error) {
	for {
		fmt.Print("Enter the optional passphrase extending the seed " +
			"(leave blank for none): ")
		pass, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return nil, err
		}
		fmt.Print("\n")
		pass = bytes.TrimSpace(pass)
		if len(pass) == 0 {
			return nil, nil
		}

		fmt.Print("Confirm passphrase: ")
		confirm, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return nil, err
		}
		fmt.Print("\n")
		confirm = bytes.TrimSpace(confirm)
		if !bytes.Equal(pass, confirm) {
			fmt.Println("The entered passphrases do not match")
			continue
		}

		return pass, nil
	}
}

// Seed prompts the user whether they want to use an existing recovery seed.
// When the user answers no, a BIP-39 recovery phrase will be generated and
// displayed to the user along with prompting them for confirmation.  When the
// user answers yes, the user is prompted for it.  Recovery phrases are
// extended with the optional BIP-39 passphrase before the seed is derived.
// All prompts are repeated until the user enters a valid response.
func Seed(reader *bufio.Reader) ([]byte, error) {
	// Ascertain the recovery seed.
	useUserSeed, err := promptListBool(reader, "Do you have an "+
		"existing recovery seed you want to use?", "no")
	if err != nil {
		return nil, err
	}
	if !useUserSeed {
		entropy, err := bip39.NewEntropy(256)
		if err != nil {
			return nil, err
		}
		mnemonic, err := bip39.NewMnemonic(entropy)
		if err != nil {
			return nil, err
		}
		words := strings.Fields(mnemonic)

		fmt.Println("Your recovery phrase is:")
		for i, word := range words {
			fmt.Printf("%v ", word)

			if (i+1)%6 == 0 {
				fmt.Printf("\n")
			}
		}

		fmt.Println("\nIMPORTANT: Keep the recovery phrase in a safe " +
			"place as you\nwill NOT be able to restore your keys " +
			"without it.")
		fmt.Println("Please keep in mind that anyone who has access\n" +
			"to the recovery phrase can also restore your keys\n" +
			"thereby giving them access to all your funds, so it\n" +
			"is imperative that you keep it in a secure location.")

		for {
			fmt.Print(`Once you have stored the recovery phrase in ` +
				`a safe and secure location, enter "OK" to ` +
				`continue: `)
			confirmSeed, err := reader.ReadString('\n')
			if err != nil {
				return nil, err
			}
			confirmSeed = strings.TrimSpace(confirmSeed)
			confirmSeed = strings.Trim(confirmSeed, `"`)
			if confirmSeed == "OK" {
				break
			}
		}

		pass, err := MnemonicPassphrase(reader)
		if err != nil {
			return nil, err
		}
		return bip39.NewSeed(mnemonic, string(pass)), nil
	}

	for {
		fmt.Println("Enter existing recovery seed, either as a BIP-39 " +
			"recovery phrase or a raw hexadecimal seed " +
			"(followed by a blank line): ")

		var seedStr string
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return nil, err
			}
			line = strings.TrimSpace(line)
			if line == "" {
				break
			}
			seedStr += " " + line
		}
		seedStrTrimmed := strings.TrimSpace(seedStr)
		seedStrTrimmed = collapseSpace(seedStrTrimmed)
		wordCount := strings.Count(seedStrTrimmed, " ") + 1

		// A single word is read as a raw hexadecimal seed and used
		// as-is, while multiple words are read as a recovery phrase.
		if wordCount == 1 {
			hexStr := strings.ToLower(seedStrTrimmed)
			if len(hexStr)%2 != 0 {
				hexStr = "0" + hexStr
			}
			seed, err := hex.DecodeString(hexStr)
			if err != nil || len(seed) < hdkeychain.MinSeedBytes ||
				len(seed) > hdkeychain.MaxSeedBytes {

				fmt.Printf("Invalid seed specified.  Must be a "+
					"BIP-39 recovery phrase or a "+
					"hexadecimal value that is at least %d bits "+
					"and at most %d bits\n",
					hdkeychain.MinSeedBytes*8,
					hdkeychain.MaxSeedBytes*8)
				continue
			}

			return seed, nil
		}

		mnemonic := strings.ToLower(seedStrTrimmed)
		if !bip39.IsMnemonicValid(mnemonic) {
			fmt.Println("Invalid recovery phrase specified.  The " +
				"words must form a valid BIP-39 mnemonic.")
			continue
		}

		pass, err := MnemonicPassphrase(reader)
		if err != nil {
			return nil, err
		}
		return bip39.NewSeed(mnemonic, string(pass)), nil
	}
}

// Setup prompts for, from a buffered reader, a recovery seed to use and the
// private passphrase the seed will be sealed under while held in memory.  The
// returned seed is ready for key derivation and the returned passphrase will
// always be a non-empty value.
func Setup(r *bufio.Reader) (seed, privPass []byte, err error) {
	// Ascertain the recovery seed.  This will either be an automatically
	// generated value the user has already confirmed or a value the user
	// has entered which has already been validated.
	seed, err = Seed(r)
	if err != nil {
		return
	}

	// Prompt for the private passphrase that seals the seed.
	privPass, err = PrivatePass(r)

	return
}

// collapseSpace takes a string and replaces any repeated areas of whitespace
// with a single space character.
func collapseSpace(in string) string {
	whiteSpace := false
	out := ""
	for _, c := range in {
		if unicode.IsSpace(c) {
			if !whiteSpace {
				out = out + " "
			}
			whiteSpace = true
		} else {
			out = out + string(c)
			whiteSpace = false
		}
	}
	return out
}
